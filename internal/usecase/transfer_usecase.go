package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/infrastructure/metrics"
)

var maxTransferAmount = decimal.RequireFromString(MaxTransferAmount)

// TransferUseCase moves money between two wallets on the platform. A
// transfer is a pair of ledger entries sharing one reference; both sides
// commit atomically or not at all.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	ledgerRepo  TransactionRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	refGen      ReferenceGenerator
	metrics     *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	ledgerRepo TransactionRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	refGen ReferenceGenerator,
	metrics *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		refGen:      refGen,
		metrics:     metrics,
	}
}

// TransferInput represents input for a wallet-to-wallet transfer.
type TransferInput struct {
	ToAccountID string
	Amount      decimal.Decimal
	Description string
}

// TransferResult is the committed outcome of a transfer.
type TransferResult struct {
	Reference string
	Debit     *domain.WalletTransaction
	Credit    *domain.WalletTransaction
	CreatedAt time.Time
}

// Transfer debits the actor's wallet and credits the destination wallet.
// Platform transfers carry no fee.
func (uc *TransferUseCase) Transfer(ctx context.Context, actor *domain.User, input TransferInput) (*TransferResult, error) {
	start := time.Now()

	if !actor.Active {
		return nil, domain.ErrAccountInactive
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.Amount.GreaterThan(maxTransferAmount) {
		return nil, domain.ErrInvalidAmount
	}
	if input.ToAccountID == actor.ID {
		return nil, domain.ErrSameAccount
	}

	accounts, err := uc.accountRepo.GetByIDs(ctx, []string{actor.ID, input.ToAccountID})
	if err != nil {
		return nil, err
	}
	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}
	from := accountMap[actor.ID]
	to := accountMap[input.ToAccountID]
	if from == nil || to == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !to.Active {
		return nil, domain.ErrAccountInactive
	}
	if from.Currency != to.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	reference := uc.refGen.NewReference(TransferReferencePrefix)

	fromBefore, fromAfter, err := uc.accountRepo.AdjustBalance(txCtx, tx, from.ID, input.Amount.Neg(), now)
	if err != nil {
		return nil, err
	}
	toBefore, toAfter, err := uc.accountRepo.AdjustBalance(txCtx, tx, to.ID, input.Amount, now)
	if err != nil {
		return nil, err
	}

	debit := &domain.WalletTransaction{
		ID:            uc.idGen.Generate(),
		AccountID:     from.ID,
		Type:          domain.TxTransferOut,
		Amount:        input.Amount.Neg(),
		Reference:     reference,
		BalanceBefore: fromBefore,
		BalanceAfter:  fromAfter,
		CreatedAt:     now,
	}
	credit := &domain.WalletTransaction{
		ID:            uc.idGen.Generate(),
		AccountID:     to.ID,
		Type:          domain.TxTransferIn,
		Amount:        input.Amount,
		Reference:     reference,
		BalanceBefore: toBefore,
		BalanceAfter:  toAfter,
		CreatedAt:     now,
	}
	if err := uc.ledgerRepo.Create(txCtx, tx, debit); err != nil {
		return nil, err
	}
	if err := uc.ledgerRepo.Create(txCtx, tx, credit); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   reference,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCreated,
		Payload: map[string]any{
			"reference":       reference,
			"from_account_id": from.ID,
			"to_account_id":   to.ID,
			"amount":          input.Amount.String(),
			"currency":        from.Currency,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		log := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       actor.ID,
			Action:       string(domain.AuditActionTransferCreate),
			ResourceType: "transfer",
			ResourceID:   reference,
			AfterState: domain.MarshalState(map[string]any{
				"from_account_id": from.ID,
				"to_account_id":   to.ID,
				"amount":          input.Amount.String(),
				"description":     input.Description,
			}),
			Status:    string(domain.AuditStatusSuccess),
			CreatedAt: time.Now(),
		}
		if err := uc.auditRepo.CreateTx(txCtx, tx, log); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
		uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
	}

	return &TransferResult{
		Reference: reference,
		Debit:     debit,
		Credit:    credit,
		CreatedAt: now,
	}, nil
}
