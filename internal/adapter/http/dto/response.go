package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

// AccountResponse represents a wallet account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Version:   a.Version,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// PartyResponse is a request participant as shown to the caller.
type PartyResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

func partyFromDomain(p *domain.Party) *PartyResponse {
	if p == nil {
		return nil
	}
	return &PartyResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
	}
}

// RequestResponse represents a money request in API responses. Evidence and
// contact fields are empty when the view is redacted.
type RequestResponse struct {
	ID              string          `json:"id"`
	Requester       *PartyResponse  `json:"requester,omitempty"`
	Fulfiller       *PartyResponse  `json:"fulfiller,omitempty"`
	Provider        string          `json:"provider"`
	Amount          decimal.Decimal `json:"amount"`
	Fees            decimal.Decimal `json:"fees"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RecipientNumber string          `json:"recipient_number"`
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	SenderNumber    string          `json:"sender_number,omitempty"`
	Screenshot      string          `json:"screenshot,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Description     string          `json:"description,omitempty"`
	Redacted        bool            `json:"redacted"`
	CreatedAt       time.Time       `json:"created_at"`
	AcceptedAt      *time.Time      `json:"accepted_at,omitempty"`
	FulfilledAt     *time.Time      `json:"fulfilled_at,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RequestFromView converts an actor-specific view to a response.
func RequestFromView(v *domain.RequestView) *RequestResponse {
	r := v.Request
	return &RequestResponse{
		ID:              r.ID,
		Requester:       partyFromDomain(v.Requester),
		Fulfiller:       partyFromDomain(v.Fulfiller),
		Provider:        string(r.Provider),
		Amount:          r.Amount,
		Fees:            r.Fees,
		TotalAmount:     r.TotalAmount,
		RecipientNumber: r.RecipientNumber,
		Reference:       r.Reference,
		Status:          string(r.Status),
		TransactionID:   r.TransactionID,
		SenderNumber:    r.SenderNumber,
		Screenshot:      r.Screenshot,
		Notes:           r.Notes,
		Description:     r.Description,
		Redacted:        v.Redacted,
		CreatedAt:       r.CreatedAt,
		AcceptedAt:      r.AcceptedAt,
		FulfilledAt:     r.FulfilledAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// RequestsFromViews converts views to responses.
func RequestsFromViews(views []*domain.RequestView) []*RequestResponse {
	result := make([]*RequestResponse, len(views))
	for i, v := range views {
		result[i] = RequestFromView(v)
	}
	return result
}

// RequestFromDomain converts a raw money request to a response. Used on
// lifecycle mutations, where the caller is always a participant.
func RequestFromDomain(r *domain.MoneyRequest) *RequestResponse {
	return RequestFromView(&domain.RequestView{Request: *r})
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a ledger entry to a response.
func TransactionFromDomain(t *domain.WalletTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		Reference:     t.Reference,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionsFromDomain converts ledger entries to responses.
func TransactionsFromDomain(txns []*domain.WalletTransaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransferResponse represents a completed transfer in API responses.
type TransferResponse struct {
	Reference string               `json:"reference"`
	Debit     *TransactionResponse `json:"debit"`
	Credit    *TransactionResponse `json:"credit"`
	CreatedAt time.Time            `json:"created_at"`
}

// TransferFromResult converts a transfer result to a response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		Reference: r.Reference,
		Debit:     TransactionFromDomain(r.Debit),
		Credit:    TransactionFromDomain(r.Credit),
		CreatedAt: r.CreatedAt,
	}
}

// ReplayResponse represents a ledger replay result.
type ReplayResponse struct {
	AccountID  string          `json:"account_id"`
	Balance    decimal.Decimal `json:"balance"`
	Replayed   decimal.Decimal `json:"replayed"`
	Entries    int             `json:"entries"`
	Consistent bool            `json:"consistent"`
}

// ReplayFromResult converts a replay result to a response.
func ReplayFromResult(r *usecase.ReplayResult) *ReplayResponse {
	return &ReplayResponse{
		AccountID:  r.AccountID,
		Balance:    r.Balance,
		Replayed:   r.Replayed,
		Entries:    r.Entries,
		Consistent: r.Consistent,
	}
}

// ListRequestsResponse wraps a page of money requests.
type ListRequestsResponse struct {
	Requests []*RequestResponse `json:"requests"`
	Total    int64              `json:"total"`
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ListTransactionsResponse wraps a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
