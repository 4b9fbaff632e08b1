package dto

import (
	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

// CreateAccountRequest represents a request to open a wallet account.
type CreateAccountRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Email:    r.Email,
		FullName: r.FullName,
		Currency: r.Currency,
	}
}

// CreateMoneyRequestRequest represents a request to create a money request.
type CreateMoneyRequestRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Provider        string          `json:"provider"`
	RecipientNumber string          `json:"recipient_number"`
	Description     string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateMoneyRequestRequest) ToUseCaseInput() usecase.CreateRequestInput {
	return usecase.CreateRequestInput{
		Amount:          r.Amount,
		Provider:        r.Provider,
		RecipientNumber: r.RecipientNumber,
		Description:     r.Description,
	}
}

// FulfillRequestRequest carries the mobile money payment evidence.
type FulfillRequestRequest struct {
	TransactionID string `json:"transaction_id"`
	SenderNumber  string `json:"sender_number"`
	Screenshot    string `json:"screenshot,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// ToEvidence converts to domain evidence.
func (r *FulfillRequestRequest) ToEvidence() domain.Evidence {
	return domain.Evidence{
		TransactionID: r.TransactionID,
		SenderNumber:  r.SenderNumber,
		Screenshot:    r.Screenshot,
		Notes:         r.Notes,
	}
}

// VerifyRequestRequest represents a verification decision.
type VerifyRequestRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *VerifyRequestRequest) ToUseCaseInput() usecase.VerifyInput {
	return usecase.VerifyInput{
		Approve: r.Approve,
		Notes:   r.Notes,
	}
}

// CreateTransferRequest represents a wallet-to-wallet transfer.
type CreateTransferRequest struct {
	ToAccountID string          `json:"to_account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		ToAccountID: r.ToAccountID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}
