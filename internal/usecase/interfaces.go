package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
)

// AccountRepository defines data access for wallet accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Account, error)
	// AdjustBalance atomically applies delta to the wallet balance inside tx,
	// refusing to take the balance negative. It returns the balance snapshots
	// around the update for the ledger entry.
	AdjustBalance(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) (before, after decimal.Decimal, err error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// RequestPatch is the set of columns a conditional status update may write.
// Nil pointer fields are left untouched.
type RequestPatch struct {
	Status        domain.RequestStatus
	FulfillerID   *string
	VerifiedByID  *string
	TransactionID *string
	SenderNumber  *string
	Screenshot    *string
	Notes         *string
	AcceptedAt    *time.Time
	FulfilledAt   *time.Time
	UpdatedAt     time.Time

	// ClearFulfiller nulls the fulfiller assignment, so a CANCELLED row
	// never keeps one.
	ClearFulfiller bool
}

// RequestFilter narrows a request listing. An empty ViewerID means no
// visibility restriction is applied (admin listings).
type RequestFilter struct {
	ViewerID string
	Status   *domain.RequestStatus
	Provider *domain.Provider
	Limit    int
	Offset   int
}

// RequestRepository defines data access for money requests.
type RequestRepository interface {
	Create(ctx context.Context, tx Transaction, request *domain.MoneyRequest) error
	GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error)
	// UpdateIf applies patch only while the request is still in expected
	// status (and, when requireUnassigned is set, has no fulfiller yet).
	// It reports whether a row matched; a false return with nil error means
	// the request changed underneath the caller.
	UpdateIf(ctx context.Context, tx Transaction, id string, expected domain.RequestStatus, requireUnassigned bool, patch RequestPatch) (bool, error)
	Query(ctx context.Context, filter RequestFilter) ([]*domain.MoneyRequest, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.MoneyRequest, error)
}

// TransactionRepository defines data access for wallet ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.WalletTransaction) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.WalletTransaction, error)
	// ListByAccountAsc returns the full history oldest first, for replay.
	ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.WalletTransaction, error)
	GetByReference(ctx context.Context, reference string) ([]*domain.WalletTransaction, error)
}

// FeeSettingsProvider resolves the fee schedule applied to new requests.
type FeeSettingsProvider interface {
	GetActive(ctx context.Context) (*domain.FeeSettings, error)
}

// FeeSettingsRepository defines data access for fee schedules.
type FeeSettingsRepository interface {
	FeeSettingsProvider
	Create(ctx context.Context, settings *domain.FeeSettings) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ReferenceGenerator produces human-readable ledger references, prefixed by
// the context they belong to (provider code, TRF for transfers).
type ReferenceGenerator interface {
	NewReference(prefix string) string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
