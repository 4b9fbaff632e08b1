package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/takapay/takapay/internal/domain"
)

type stubExpirer struct {
	stale        []*domain.MoneyRequest
	errorsByID   map[string]error
	expired      []string
	listCalls    int
	listFailWith error
}

func (s *stubExpirer) ListStalePending(ctx context.Context, limit int) ([]*domain.MoneyRequest, error) {
	s.listCalls++
	if s.listFailWith != nil {
		return nil, s.listFailWith
	}
	if len(s.stale) <= limit {
		return s.stale, nil
	}
	return s.stale[:limit], nil
}

func (s *stubExpirer) ExpireRequest(ctx context.Context, requestID string) error {
	if err := s.errorsByID[requestID]; err != nil {
		return err
	}
	s.expired = append(s.expired, requestID)
	return nil
}

func newTestSweeper(expirer *stubExpirer) *Sweeper {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(Config{
		Requests:  expirer,
		Logger:    logger,
		BatchSize: 10,
		Interval:  5 * time.Millisecond,
	})
}

func TestSweepExpiresStaleRequests(t *testing.T) {
	expirer := &stubExpirer{stale: []*domain.MoneyRequest{
		{ID: "req-1"},
		{ID: "req-2"},
	}}
	s := newTestSweeper(expirer)

	if err := s.sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(expirer.expired) != 2 {
		t.Fatalf("expected 2 expired requests, got %#v", expirer.expired)
	}
}

func TestSweepToleratesLostRaces(t *testing.T) {
	expirer := &stubExpirer{
		stale: []*domain.MoneyRequest{
			{ID: "req-1"},
			{ID: "req-2"},
			{ID: "req-3"},
		},
		errorsByID: map[string]error{
			"req-1": domain.ErrRequestConflict,
			"req-2": domain.ErrInvalidTransition,
		},
	}
	s := newTestSweeper(expirer)

	if err := s.sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(expirer.expired) != 1 || expirer.expired[0] != "req-3" {
		t.Fatalf("expected only req-3 to be expired, got %#v", expirer.expired)
	}
}

func TestSweepPropagatesListError(t *testing.T) {
	expirer := &stubExpirer{listFailWith: errors.New("db down")}
	s := newTestSweeper(expirer)

	if err := s.sweep(context.Background()); err == nil {
		t.Fatal("expected list error to propagate")
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	expirer := &stubExpirer{}
	s := newTestSweeper(expirer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
