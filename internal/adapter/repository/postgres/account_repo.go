package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const insertAccount = `
	INSERT INTO wallet_accounts (id, email, full_name, currency, balance, version, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Create creates a new wallet account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, insertAccount,
		account.ID,
		account.Email,
		account.FullName,
		account.Currency,
		decimalToNumeric(account.Balance),
		account.Version,
		account.Active,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)
	return err
}

// CreateTx creates a new wallet account within a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, insertAccount,
		account.ID,
		account.Email,
		account.FullName,
		account.Currency,
		decimalToNumeric(account.Balance),
		account.Version,
		account.Active,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)
	return err
}

const selectAccount = `
	SELECT id, email, full_name, currency, balance, version, active, created_at, updated_at
	FROM wallet_accounts
`

// GetByID retrieves a wallet account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, selectAccount+` WHERE id = $1`, id)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetByIDs retrieves multiple wallet accounts by ID.
func (r *AccountRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, selectAccount+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// AdjustBalance atomically applies delta to the wallet balance. The WHERE
// clause refuses updates that would take the balance negative, which is the
// single enforcement point for the no-overdraft rule under concurrency.
func (r *AccountRepository) AdjustBalance(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) (decimal.Decimal, decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE wallet_accounts
		SET balance = balance + $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND active AND balance + $2 >= 0
		RETURNING balance
	`

	var after pgtype.Numeric
	err := pgxTx.QueryRow(ctx, query, id, decimalToNumeric(delta), timeToPgTimestamptz(updatedAt)).Scan(&after)
	if err == nil {
		afterDec := numericToDecimal(after)
		return afterDec.Sub(delta), afterDec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, decimal.Zero, err
	}

	// No row matched: distinguish a missing or inactive account from an
	// overdraft attempt.
	var available pgtype.Numeric
	var active bool
	err = pgxTx.QueryRow(ctx, `SELECT balance, active FROM wallet_accounts WHERE id = $1`, id).Scan(&available, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrAccountNotFound
		}
		return decimal.Zero, decimal.Zero, err
	}
	if !active {
		return decimal.Zero, decimal.Zero, domain.ErrAccountInactive
	}
	return decimal.Zero, decimal.Zero, &domain.InsufficientBalanceError{
		AccountID: id,
		Required:  delta.Neg(),
		Available: numericToDecimal(available),
	}
}

// List lists wallet accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, selectAccount+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.FullName,
		&account.Currency,
		&balance,
		&account.Version,
		&account.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Balance = numericToDecimal(balance)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time
	return &account, nil
}
