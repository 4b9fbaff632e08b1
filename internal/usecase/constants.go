package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// MinRequestAmount is the smallest mobile money request accepted (in decimal string)
	MinRequestAmount = "50"

	// MaxTransferAmount is the maximum amount allowed for a single transfer (in decimal string)
	MaxTransferAmount = "1000000000" // 1 billion

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultPageSize and MaxPageSize bound listing endpoints
	DefaultPageSize = 20
	MaxPageSize     = 100

	// TransferReferencePrefix tags the shared reference of a transfer's entry pair
	TransferReferencePrefix = "TRF"
)
