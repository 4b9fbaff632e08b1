package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a user wallet holding a spendable balance.
type Account struct {
	ID        string
	Email     string
	FullName  string
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks whether the wallet can cover amount. Wallets never go
// negative; there are no overdraft accounts in this system.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return &InsufficientBalanceError{
			AccountID: a.ID,
			Required:  amount,
			Available: a.Balance,
		}
	}
	return nil
}

// FirstName returns the leading word of the full name, used when a
// counterpart's identity is reduced for non-participants.
func (a *Account) FirstName() string {
	for i := 0; i < len(a.FullName); i++ {
		if a.FullName[i] == ' ' {
			return a.FullName[:i]
		}
	}
	return a.FullName
}
