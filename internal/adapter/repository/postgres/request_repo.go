package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

// RequestRepository implements usecase.RequestRepository.
type RequestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// Create inserts a new money request within a transaction.
func (r *RequestRepository) Create(ctx context.Context, tx usecase.Transaction, request *domain.MoneyRequest) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO money_requests (
			id, requester_id, fulfiller_id, verified_by_id, provider,
			amount, fees, total_amount, recipient_number, reference, status,
			transaction_id, sender_number, screenshot, notes, description,
			created_at, accepted_at, fulfilled_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := pgxTx.Exec(ctx, query,
		request.ID,
		request.RequesterID,
		stringPtrToText(request.FulfillerID),
		stringPtrToText(request.VerifiedByID),
		string(request.Provider),
		decimalToNumeric(request.Amount),
		decimalToNumeric(request.Fees),
		decimalToNumeric(request.TotalAmount),
		request.RecipientNumber,
		request.Reference,
		string(request.Status),
		request.TransactionID,
		request.SenderNumber,
		request.Screenshot,
		request.Notes,
		request.Description,
		timeToPgTimestamptz(request.CreatedAt),
		timePtrToPgTimestamptz(request.AcceptedAt),
		timePtrToPgTimestamptz(request.FulfilledAt),
		timeToPgTimestamptz(request.UpdatedAt),
	)
	return err
}

const selectRequest = `
	SELECT id, requester_id, fulfiller_id, verified_by_id, provider,
	       amount, fees, total_amount, recipient_number, reference, status,
	       transaction_id, sender_number, screenshot, notes, description,
	       created_at, accepted_at, fulfilled_at, updated_at
	FROM money_requests
`

// GetByID retrieves a money request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error) {
	row := r.pool.QueryRow(ctx, selectRequest+` WHERE id = $1`, id)

	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// UpdateIf applies patch while the request is still in the expected status.
// The status predicate in the WHERE clause is what serializes concurrent
// lifecycle transitions: whichever update runs first wins, the rest match
// zero rows.
func (r *RequestRepository) UpdateIf(ctx context.Context, tx usecase.Transaction, id string, expected domain.RequestStatus, requireUnassigned bool, patch usecase.RequestPatch) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	set := []string{"status = $1", "updated_at = $2"}
	args := []any{string(patch.Status), timeToPgTimestamptz(patch.UpdatedAt)}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.FulfillerID != nil {
		add("fulfiller_id", *patch.FulfillerID)
	}
	if patch.ClearFulfiller {
		set = append(set, "fulfiller_id = NULL")
	}
	if patch.VerifiedByID != nil {
		add("verified_by_id", *patch.VerifiedByID)
	}
	if patch.TransactionID != nil {
		add("transaction_id", *patch.TransactionID)
	}
	if patch.SenderNumber != nil {
		add("sender_number", *patch.SenderNumber)
	}
	if patch.Screenshot != nil {
		add("screenshot", *patch.Screenshot)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.AcceptedAt != nil {
		add("accepted_at", timeToPgTimestamptz(*patch.AcceptedAt))
	}
	if patch.FulfilledAt != nil {
		add("fulfilled_at", timeToPgTimestamptz(*patch.FulfilledAt))
	}

	args = append(args, id)
	idPos := len(args)
	args = append(args, string(expected))
	expectedPos := len(args)

	query := fmt.Sprintf(
		`UPDATE money_requests SET %s WHERE id = $%d AND status = $%d`,
		strings.Join(set, ", "), idPos, expectedPos,
	)
	if requireUnassigned {
		query += ` AND fulfiller_id IS NULL`
	}

	tag, err := pgxTx.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Query lists requests matching the filter, newest first. A non-empty
// ViewerID restricts results to what that user may see: their own requests
// plus the open PENDING pool.
func (r *RequestRepository) Query(ctx context.Context, filter usecase.RequestFilter) ([]*domain.MoneyRequest, error) {
	query := selectRequest + ` WHERE 1=1`
	var args []any

	if filter.ViewerID != "" {
		args = append(args, filter.ViewerID)
		query += fmt.Sprintf(` AND (requester_id = $%d OR fulfiller_id = $%d OR status = 'PENDING')`, len(args), len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Provider != nil {
		args = append(args, string(*filter.Provider))
		query += fmt.Sprintf(` AND provider = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	return r.queryMany(ctx, query, args...)
}

// ListStalePending returns PENDING requests created before olderThan,
// oldest first, for the expiry sweep.
func (r *RequestRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.MoneyRequest, error) {
	query := selectRequest + `
		WHERE status = 'PENDING' AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`
	return r.queryMany(ctx, query, timeToPgTimestamptz(olderThan), limit)
}

func (r *RequestRepository) queryMany(ctx context.Context, query string, args ...any) ([]*domain.MoneyRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.MoneyRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func scanRequest(row pgx.Row) (*domain.MoneyRequest, error) {
	var (
		request      domain.MoneyRequest
		fulfillerID  pgtype.Text
		verifiedByID pgtype.Text
		provider     string
		status       string
		amount       pgtype.Numeric
		fees         pgtype.Numeric
		totalAmount  pgtype.Numeric
		createdAt    pgtype.Timestamptz
		acceptedAt   pgtype.Timestamptz
		fulfilledAt  pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&request.ID,
		&request.RequesterID,
		&fulfillerID,
		&verifiedByID,
		&provider,
		&amount,
		&fees,
		&totalAmount,
		&request.RecipientNumber,
		&request.Reference,
		&status,
		&request.TransactionID,
		&request.SenderNumber,
		&request.Screenshot,
		&request.Notes,
		&request.Description,
		&createdAt,
		&acceptedAt,
		&fulfilledAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	request.FulfillerID = textToStringPtr(fulfillerID)
	request.VerifiedByID = textToStringPtr(verifiedByID)
	request.Provider = domain.Provider(provider)
	request.Status = domain.RequestStatus(status)
	request.Amount = numericToDecimal(amount)
	request.Fees = numericToDecimal(fees)
	request.TotalAmount = numericToDecimal(totalAmount)
	request.CreatedAt = createdAt.Time
	request.AcceptedAt = pgTimestamptzToTimePtr(acceptedAt)
	request.FulfilledAt = pgTimestamptzToTimePtr(fulfilledAt)
	request.UpdatedAt = updatedAt.Time
	return &request, nil
}
