package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/takapay/takapay/internal/domain"
)

// RequestExpirer lists stale pending requests and expires them.
type RequestExpirer interface {
	ListStalePending(ctx context.Context, limit int) ([]*domain.MoneyRequest, error)
	ExpireRequest(ctx context.Context, requestID string) error
}

// Sweeper periodically expires pending requests whose acceptance window
// has elapsed, refunding the reserved funds.
type Sweeper struct {
	requests  RequestExpirer
	logger    *slog.Logger
	batchSize int
	interval  time.Duration
}

// Config for Sweeper.
type Config struct {
	Requests  RequestExpirer
	Logger    *slog.Logger
	BatchSize int
	Interval  time.Duration
}

// New creates a new Sweeper.
func New(cfg Config) *Sweeper {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Sweeper{
		requests:  cfg.Requests,
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("request sweeper started",
		slog.Int("batch_size", s.batchSize),
		slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.sweep(ctx); err != nil {
		s.logger.Error("error sweeping on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("request sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Error("error sweeping stale requests", slog.String("error", err.Error()))
			}
		}
	}
}

// sweep expires one batch of stale pending requests. A request accepted
// between listing and expiry loses the race; that is expected and skipped.
func (s *Sweeper) sweep(ctx context.Context) error {
	stale, err := s.requests.ListStalePending(ctx, s.batchSize)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	s.logger.Info("expiring stale requests", slog.Int("count", len(stale)))

	for _, r := range stale {
		err := s.requests.ExpireRequest(ctx, r.ID)
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrRequestConflict) || errors.Is(err, domain.ErrInvalidTransition) {
			s.logger.Debug("request no longer expirable, skipping",
				slog.String("request_id", r.ID))
			continue
		}
		s.logger.Error("failed to expire request",
			slog.String("request_id", r.ID),
			slog.String("error", err.Error()))
	}

	return nil
}
