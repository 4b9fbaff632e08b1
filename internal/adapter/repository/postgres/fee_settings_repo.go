package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/takapay/takapay/internal/domain"
)

// FeeSettingsRepository implements usecase.FeeSettingsRepository. Fee rows
// are never updated in place; a new active row supersedes the old one so
// past requests stay explainable.
type FeeSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewFeeSettingsRepository creates a new FeeSettingsRepository.
func NewFeeSettingsRepository(pool *pgxpool.Pool) *FeeSettingsRepository {
	return &FeeSettingsRepository{pool: pool}
}

// GetActive returns the most recent active fee schedule.
func (r *FeeSettingsRepository) GetActive(ctx context.Context) (*domain.FeeSettings, error) {
	query := `
		SELECT id, mobile_money_fee_pct, minimum_fee, maximum_fee, active, created_at
		FROM fee_settings
		WHERE active
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		settings domain.FeeSettings
		pct      pgtype.Numeric
		minFee   pgtype.Numeric
		maxFee   pgtype.Numeric
		created  pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, query).Scan(&settings.ID, &pct, &minFee, &maxFee, &settings.Active, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveFeeSettings
		}
		return nil, err
	}

	settings.MobileMoneyFeePct = numericToDecimal(pct)
	settings.MinimumFee = numericToDecimal(minFee)
	settings.MaximumFee = numericToDecimal(maxFee)
	settings.CreatedAt = created.Time
	return &settings, nil
}

// Create inserts a new fee schedule and deactivates any previous ones in a
// single transaction.
func (r *FeeSettingsRepository) Create(ctx context.Context, settings *domain.FeeSettings) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if settings.Active {
		if _, err := tx.Exec(ctx, `UPDATE fee_settings SET active = false WHERE active`); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO fee_settings (id, mobile_money_fee_pct, minimum_fee, maximum_fee, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, query,
		settings.ID,
		decimalToNumeric(settings.MobileMoneyFeePct),
		decimalToNumeric(settings.MinimumFee),
		decimalToNumeric(settings.MaximumFee),
		settings.Active,
		timeToPgTimestamptz(settings.CreatedAt),
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
