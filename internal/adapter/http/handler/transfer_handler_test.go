package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/adapter/http/dto"
	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

type transferServiceStub struct {
	transferFn func(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error)
}

func (s *transferServiceStub) Transfer(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
	return s.transferFn(ctx, actor, input)
}

func TestTransferHandler_Create_Success(t *testing.T) {
	now := time.Now()
	result := &usecase.TransferResult{
		Reference: "TRF-000001",
		Debit: &domain.WalletTransaction{
			ID:        "txn-1",
			AccountID: "user-1",
			Amount:    decimal.RequireFromString("-200"),
			Reference: "TRF-000001",
		},
		Credit: &domain.WalletTransaction{
			ID:        "txn-2",
			AccountID: "user-2",
			Amount:    decimal.RequireFromString("200"),
			Reference: "TRF-000001",
		},
		CreatedAt: now,
	}

	var captured usecase.TransferInput
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
			captured = input
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		ToAccountID: "user-2",
		Amount:      decimal.RequireFromString("200"),
	})
	req := authenticated(httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body)), member("user-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.ToAccountID != "user-2" || !captured.Amount.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Reference != "TRF-000001" || resp.Debit.ID != "txn-1" || resp.Credit.ID != "txn-2" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransferHandler_Create_InsufficientBalance(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
			return nil, domain.ErrInsufficientBalance
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{ToAccountID: "user-2", Amount: decimal.RequireFromString("9999")})
	req := authenticated(httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body)), member("user-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_Unauthenticated(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		transferFn: func(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
			t.Fatal("Transfer should not be called without a user")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
