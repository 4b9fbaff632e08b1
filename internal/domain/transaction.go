package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a wallet ledger entry.
type TransactionType string

const (
	TxMobileMoneyOut    TransactionType = "MOBILE_MONEY_OUT"
	TxMobileMoneyRefund TransactionType = "MOBILE_MONEY_REFUND"
	TxTransferOut       TransactionType = "TRANSFER_OUT"
	TxTransferIn        TransactionType = "TRANSFER_IN"
)

// WalletTransaction is one immutable ledger entry. Amount is signed: debits
// are negative, credits positive. BalanceBefore and BalanceAfter snapshot the
// wallet around the entry so the full history is replayable.
type WalletTransaction struct {
	ID            string
	AccountID     string
	Type          TransactionType
	Amount        decimal.Decimal
	Reference     string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}

// Consistent checks the entry's own arithmetic.
func (t *WalletTransaction) Consistent() bool {
	return t.BalanceBefore.Add(t.Amount).Equal(t.BalanceAfter)
}

// ReplayLedger replays entries (ordered oldest first) from the first entry's
// BalanceBefore and verifies that each snapshot chains exactly onto the
// previous one. Returns the final balance.
func ReplayLedger(entries []*WalletTransaction) (decimal.Decimal, error) {
	if len(entries) == 0 {
		return decimal.Zero, nil
	}

	running := entries[0].BalanceBefore
	for _, e := range entries {
		if !e.BalanceBefore.Equal(running) {
			return decimal.Zero, ErrLedgerInconsistent
		}
		if !e.Consistent() {
			return decimal.Zero, ErrLedgerInconsistent
		}
		running = e.BalanceAfter
	}

	return running, nil
}
