package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
	"github.com/takapay/takapay/internal/usecase/mocks"
)

type transferFixture struct {
	uc       *usecase.TransferUseCase
	accounts *mocks.MockAccountRepository
	ledger   *mocks.MockTransactionRepository
	outbox   *mocks.MockOutboxRepository
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()

	accounts := mocks.NewMockAccountRepository()
	ledger := mocks.NewMockTransactionRepository()
	outbox := mocks.NewMockOutboxRepository()

	uc := usecase.NewTransferUseCase(
		mocks.NewMockTransactionManager(),
		accounts,
		ledger,
		outbox,
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockReferenceGenerator(),
		nil,
	)

	return &transferFixture{uc: uc, accounts: accounts, ledger: ledger, outbox: outbox}
}

func (f *transferFixture) seed(id, currency string, balance int64) {
	f.accounts.Seed(&domain.Account{
		ID:       id,
		Email:    id + "@example.com",
		FullName: "Test User",
		Currency: currency,
		Balance:  decimal.NewFromInt(balance),
		Active:   true,
	})
}

func TestTransferUseCase_Transfer(t *testing.T) {
	t.Run("successful transfer", func(t *testing.T) {
		f := newTransferFixture(t)
		f.seed("user-1", "BDT", 500)
		f.seed("user-2", "BDT", 100)

		result, err := f.uc.Transfer(context.Background(), member("user-1"), usecase.TransferInput{
			ToAccountID: "user-2",
			Amount:      decimal.NewFromInt(200),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !f.accounts.Balance("user-1").Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected sender balance 300, got %s", f.accounts.Balance("user-1"))
		}
		if !f.accounts.Balance("user-2").Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected recipient balance 300, got %s", f.accounts.Balance("user-2"))
		}

		if result.Debit.Type != domain.TxTransferOut || result.Credit.Type != domain.TxTransferIn {
			t.Errorf("unexpected entry types: %s / %s", result.Debit.Type, result.Credit.Type)
		}
		if result.Debit.Reference != result.Credit.Reference {
			t.Error("both legs must share one reference")
		}
		if !result.Debit.Amount.Neg().Equal(result.Credit.Amount) {
			t.Errorf("legs must balance: %s vs %s", result.Debit.Amount, result.Credit.Amount)
		}

		entries, _ := f.ledger.GetByReference(context.Background(), result.Reference)
		if len(entries) != 2 {
			t.Fatalf("expected 2 ledger entries, got %d", len(entries))
		}

		events := f.outbox.Events()
		if len(events) != 1 || events[0].EventType != domain.EventTypeTransferCreated {
			t.Errorf("expected one transfer.created event, got %+v", events)
		}
	})

	t.Run("insufficient balance", func(t *testing.T) {
		f := newTransferFixture(t)
		f.seed("user-1", "BDT", 100)
		f.seed("user-2", "BDT", 0)

		_, err := f.uc.Transfer(context.Background(), member("user-1"), usecase.TransferInput{
			ToAccountID: "user-2",
			Amount:      decimal.NewFromInt(200),
		})
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		if !f.accounts.Balance("user-1").Equal(decimal.NewFromInt(100)) {
			t.Error("failed transfer must not touch the sender balance")
		}
	})

	t.Run("same account", func(t *testing.T) {
		f := newTransferFixture(t)
		f.seed("user-1", "BDT", 500)

		_, err := f.uc.Transfer(context.Background(), member("user-1"), usecase.TransferInput{
			ToAccountID: "user-1",
			Amount:      decimal.NewFromInt(100),
		})
		if !errors.Is(err, domain.ErrSameAccount) {
			t.Fatalf("expected ErrSameAccount, got %v", err)
		}
	})

	t.Run("currency mismatch", func(t *testing.T) {
		f := newTransferFixture(t)
		f.seed("user-1", "BDT", 500)
		f.seed("user-2", "USD", 100)

		_, err := f.uc.Transfer(context.Background(), member("user-1"), usecase.TransferInput{
			ToAccountID: "user-2",
			Amount:      decimal.NewFromInt(100),
		})
		if !errors.Is(err, domain.ErrCurrencyMismatch) {
			t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
		}
	})

	t.Run("unknown recipient", func(t *testing.T) {
		f := newTransferFixture(t)
		f.seed("user-1", "BDT", 500)

		_, err := f.uc.Transfer(context.Background(), member("user-1"), usecase.TransferInput{
			ToAccountID: "ghost",
			Amount:      decimal.NewFromInt(100),
		})
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		f := newTransferFixture(t)
		f.seed("user-1", "BDT", 500)
		f.seed("user-2", "BDT", 100)

		_, err := f.uc.Transfer(context.Background(), member("user-1"), usecase.TransferInput{
			ToAccountID: "user-2",
			Amount:      decimal.Zero,
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})
}
