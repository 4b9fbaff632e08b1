package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. Ledger
// entries are insert-only; there is no update path.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a ledger entry within a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.WalletTransaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO wallet_transactions (
			id, account_id, type, amount, reference,
			balance_before, balance_after, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := pgxTx.Exec(ctx, query,
		entry.ID,
		entry.AccountID,
		string(entry.Type),
		decimalToNumeric(entry.Amount),
		entry.Reference,
		decimalToNumeric(entry.BalanceBefore),
		decimalToNumeric(entry.BalanceAfter),
		timeToPgTimestamptz(entry.CreatedAt),
	)
	return err
}

const selectTransaction = `
	SELECT id, account_id, type, amount, reference, balance_before, balance_after, created_at
	FROM wallet_transactions
`

// ListByAccount returns the account's entries, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	query := selectTransaction + ` WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	return r.queryMany(ctx, query, accountID, limit, offset)
}

// ListByAccountAsc returns the account's full history oldest first, in the
// order replay expects.
func (r *TransactionRepository) ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.WalletTransaction, error) {
	query := selectTransaction + ` WHERE account_id = $1 ORDER BY created_at, id`
	return r.queryMany(ctx, query, accountID)
}

// GetByReference returns all entries sharing a reference, e.g. both legs of
// a transfer or a debit and its refund.
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) ([]*domain.WalletTransaction, error) {
	query := selectTransaction + ` WHERE reference = $1 ORDER BY created_at, id`
	return r.queryMany(ctx, query, reference)
}

func (r *TransactionRepository) queryMany(ctx context.Context, query string, args ...any) ([]*domain.WalletTransaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.WalletTransaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	var (
		entry         domain.WalletTransaction
		entryType     string
		amount        pgtype.Numeric
		balanceBefore pgtype.Numeric
		balanceAfter  pgtype.Numeric
		createdAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.AccountID,
		&entryType,
		&amount,
		&entry.Reference,
		&balanceBefore,
		&balanceAfter,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Type = domain.TransactionType(entryType)
	entry.Amount = numericToDecimal(amount)
	entry.BalanceBefore = numericToDecimal(balanceBefore)
	entry.BalanceAfter = numericToDecimal(balanceAfter)
	entry.CreatedAt = createdAt.Time
	return &entry, nil
}
