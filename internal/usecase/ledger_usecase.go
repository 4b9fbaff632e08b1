package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
)

// LedgerUseCase exposes the wallet transaction history and the replay check
// that proves the stored balance is reproducible from it.
type LedgerUseCase struct {
	accountRepo AccountRepository
	ledgerRepo  TransactionRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, ledgerRepo TransactionRepository) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// ListTransactionsInput represents input for listing wallet transactions.
type ListTransactionsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransactions returns the account's ledger entries, newest first.
// Members may only read their own history.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, actor *domain.User, input ListTransactionsInput) ([]*domain.WalletTransaction, error) {
	if !actor.Role.SeesEverything() && actor.ID != input.AccountID {
		return nil, domain.ErrForbidden
	}
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}
	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}
	return uc.ledgerRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// ReplayResult is the outcome of replaying an account's full history.
type ReplayResult struct {
	AccountID  string
	Balance    decimal.Decimal
	Replayed   decimal.Decimal
	Entries    int
	Consistent bool
}

// ReplayAccount replays the full ledger history of an account and compares
// the reproduced balance with the stored one. Admin only.
func (uc *LedgerUseCase) ReplayAccount(ctx context.Context, actor *domain.User, accountID string) (*ReplayResult, error) {
	if !actor.Role.SeesEverything() {
		return nil, domain.ErrForbidden
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.ledgerRepo.ListByAccountAsc(ctx, accountID)
	if err != nil {
		return nil, err
	}

	replayed, err := domain.ReplayLedger(entries)
	if err != nil {
		return &ReplayResult{
			AccountID:  accountID,
			Balance:    account.Balance,
			Replayed:   decimal.Zero,
			Entries:    len(entries),
			Consistent: false,
		}, nil
	}

	return &ReplayResult{
		AccountID:  accountID,
		Balance:    account.Balance,
		Replayed:   replayed,
		Entries:    len(entries),
		Consistent: replayed.Equal(account.Balance),
	}, nil
}
