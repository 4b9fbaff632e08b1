package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/takapay/takapay/internal/adapter/http/dto"
	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

// LedgerService defines the behavior needed by TransactionHandler.
type LedgerService interface {
	ListTransactions(ctx context.Context, actor *domain.User, input usecase.ListTransactionsInput) ([]*domain.WalletTransaction, error)
	ReplayAccount(ctx context.Context, actor *domain.User, accountID string) (*usecase.ReplayResult, error)
}

// TransactionHandler handles ledger HTTP requests.
type TransactionHandler struct {
	ledgerUC LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerUC LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC}
}

// ListByAccount lists an account's ledger entries, newest first.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	txns, err := h.ledgerUC.ListTransactions(r.Context(), user, usecase.ListTransactionsInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Total:        int64(len(txns)),
	})
}

// Replay replays the account's ledger and reports consistency. Admin only.
func (h *TransactionHandler) Replay(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.ledgerUC.ReplayAccount(r.Context(), user, accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to replay ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReplayFromResult(result))
}
