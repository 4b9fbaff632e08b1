package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/adapter/http/dto"
	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

type requestServiceStub struct {
	createFn  func(ctx context.Context, actor *domain.User, input usecase.CreateRequestInput) (*domain.MoneyRequest, error)
	acceptFn  func(ctx context.Context, actor *domain.User, id string) (*domain.MoneyRequest, error)
	fulfillFn func(ctx context.Context, actor *domain.User, id string, evidence domain.Evidence) (*domain.MoneyRequest, error)
	verifyFn  func(ctx context.Context, actor *domain.User, id string, input usecase.VerifyInput) (*domain.MoneyRequest, error)
	cancelFn  func(ctx context.Context, actor *domain.User, id string) (*domain.MoneyRequest, error)
	getFn     func(ctx context.Context, actor *domain.User, id string) (*domain.RequestView, error)
	listFn    func(ctx context.Context, actor *domain.User, input usecase.ListRequestsInput) ([]*domain.RequestView, error)
}

func (s *requestServiceStub) CreateRequest(ctx context.Context, actor *domain.User, input usecase.CreateRequestInput) (*domain.MoneyRequest, error) {
	return s.createFn(ctx, actor, input)
}

func (s *requestServiceStub) AcceptRequest(ctx context.Context, actor *domain.User, id string) (*domain.MoneyRequest, error) {
	return s.acceptFn(ctx, actor, id)
}

func (s *requestServiceStub) FulfillRequest(ctx context.Context, actor *domain.User, id string, evidence domain.Evidence) (*domain.MoneyRequest, error) {
	return s.fulfillFn(ctx, actor, id, evidence)
}

func (s *requestServiceStub) VerifyRequest(ctx context.Context, actor *domain.User, id string, input usecase.VerifyInput) (*domain.MoneyRequest, error) {
	return s.verifyFn(ctx, actor, id, input)
}

func (s *requestServiceStub) CancelRequest(ctx context.Context, actor *domain.User, id string) (*domain.MoneyRequest, error) {
	return s.cancelFn(ctx, actor, id)
}

func (s *requestServiceStub) GetRequest(ctx context.Context, actor *domain.User, id string) (*domain.RequestView, error) {
	return s.getFn(ctx, actor, id)
}

func (s *requestServiceStub) ListRequests(ctx context.Context, actor *domain.User, input usecase.ListRequestsInput) ([]*domain.RequestView, error) {
	return s.listFn(ctx, actor, input)
}

func authenticated(r *http.Request, u *domain.User) *http.Request {
	return r.WithContext(domain.ContextWithUser(r.Context(), u))
}

func member(id string) *domain.User {
	return &domain.User{ID: id, Role: domain.RoleMember, Active: true}
}

func sampleRequest(id string) *domain.MoneyRequest {
	return &domain.MoneyRequest{
		ID:              id,
		RequesterID:     "user-1",
		Provider:        domain.ProviderBkash,
		Amount:          decimal.RequireFromString("500"),
		Fees:            decimal.RequireFromString("10"),
		TotalAmount:     decimal.RequireFromString("510"),
		RecipientNumber: "01712345678",
		Reference:       "BKASH-000001",
		Status:          domain.StatusPending,
	}
}

func TestRequestHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateRequestInput
	handler := NewRequestHandler(&requestServiceStub{
		createFn: func(ctx context.Context, actor *domain.User, input usecase.CreateRequestInput) (*domain.MoneyRequest, error) {
			captured = input
			return sampleRequest("req-1"), nil
		},
	})

	body, _ := json.Marshal(dto.CreateMoneyRequestRequest{
		Amount:          decimal.RequireFromString("500"),
		Provider:        "BKASH",
		RecipientNumber: "01712345678",
	})

	req := authenticated(httptest.NewRequest(http.MethodPost, "/requests", bytes.NewReader(body)), member("user-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Provider != "BKASH" || captured.RecipientNumber != "01712345678" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.RequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "req-1" || resp.Status != "PENDING" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRequestHandler_Create_Unauthenticated(t *testing.T) {
	handler := NewRequestHandler(&requestServiceStub{
		createFn: func(ctx context.Context, actor *domain.User, input usecase.CreateRequestInput) (*domain.MoneyRequest, error) {
			t.Fatal("CreateRequest should not be called without a user")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequestHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewRequestHandler(&requestServiceStub{
		createFn: func(ctx context.Context, actor *domain.User, input usecase.CreateRequestInput) (*domain.MoneyRequest, error) {
			t.Fatal("CreateRequest should not be called for invalid payload")
			return nil, nil
		},
	})

	req := authenticated(httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString("{invalid")), member("user-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequestHandler_Create_InsufficientBalance(t *testing.T) {
	handler := NewRequestHandler(&requestServiceStub{
		createFn: func(ctx context.Context, actor *domain.User, input usecase.CreateRequestInput) (*domain.MoneyRequest, error) {
			return nil, &domain.InsufficientBalanceError{
				AccountID: actor.ID,
				Required:  decimal.RequireFromString("510"),
				Available: decimal.RequireFromString("100"),
			}
		},
	})

	body, _ := json.Marshal(dto.CreateMoneyRequestRequest{
		Amount:          decimal.RequireFromString("500"),
		Provider:        "BKASH",
		RecipientNumber: "01712345678",
	})
	req := authenticated(httptest.NewRequest(http.MethodPost, "/requests", bytes.NewReader(body)), member("user-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequestHandler_Accept_Conflict(t *testing.T) {
	handler := NewRequestHandler(&requestServiceStub{
		acceptFn: func(ctx context.Context, actor *domain.User, id string) (*domain.MoneyRequest, error) {
			return nil, domain.ErrRequestConflict
		},
	})

	req := authenticated(httptest.NewRequest(http.MethodPost, "/requests/req-1/accept", nil), member("user-2"))
	req = setChiURLParam(req, "id", "req-1")
	rec := httptest.NewRecorder()

	handler.Accept(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRequestHandler_Accept_Success(t *testing.T) {
	accepted := sampleRequest("req-1")
	fulfillerID := "user-2"
	accepted.FulfillerID = &fulfillerID
	accepted.Status = domain.StatusAccepted

	handler := NewRequestHandler(&requestServiceStub{
		acceptFn: func(ctx context.Context, actor *domain.User, id string) (*domain.MoneyRequest, error) {
			if id != "req-1" {
				t.Fatalf("expected id req-1, got %s", id)
			}
			return accepted, nil
		},
	})

	req := authenticated(httptest.NewRequest(http.MethodPost, "/requests/req-1/accept", nil), member("user-2"))
	req = setChiURLParam(req, "id", "req-1")
	rec := httptest.NewRecorder()

	handler.Accept(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.RequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ACCEPTED" {
		t.Fatalf("expected ACCEPTED, got %s", resp.Status)
	}
}

func TestRequestHandler_Fulfill_MissingEvidence(t *testing.T) {
	handler := NewRequestHandler(&requestServiceStub{
		fulfillFn: func(ctx context.Context, actor *domain.User, id string, evidence domain.Evidence) (*domain.MoneyRequest, error) {
			return nil, domain.ErrMissingEvidence
		},
	})

	body, _ := json.Marshal(dto.FulfillRequestRequest{})
	req := authenticated(httptest.NewRequest(http.MethodPost, "/requests/req-1/fulfill", bytes.NewReader(body)), member("user-2"))
	req = setChiURLParam(req, "id", "req-1")
	rec := httptest.NewRecorder()

	handler.Fulfill(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequestHandler_Verify_Forbidden(t *testing.T) {
	handler := NewRequestHandler(&requestServiceStub{
		verifyFn: func(ctx context.Context, actor *domain.User, id string, input usecase.VerifyInput) (*domain.MoneyRequest, error) {
			return nil, domain.ErrForbidden
		},
	})

	body, _ := json.Marshal(dto.VerifyRequestRequest{Approve: true})
	req := authenticated(httptest.NewRequest(http.MethodPost, "/requests/req-1/verify", bytes.NewReader(body)), member("user-2"))
	req = setChiURLParam(req, "id", "req-1")
	rec := httptest.NewRecorder()

	handler.Verify(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequestHandler_Get_NotFound(t *testing.T) {
	handler := NewRequestHandler(&requestServiceStub{
		getFn: func(ctx context.Context, actor *domain.User, id string) (*domain.RequestView, error) {
			return nil, domain.ErrRequestNotFound
		},
	})

	req := authenticated(httptest.NewRequest(http.MethodGet, "/requests/req-1", nil), member("user-9"))
	req = setChiURLParam(req, "id", "req-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRequestHandler_List_PassesFilters(t *testing.T) {
	handler := NewRequestHandler(&requestServiceStub{
		listFn: func(ctx context.Context, actor *domain.User, input usecase.ListRequestsInput) ([]*domain.RequestView, error) {
			if input.Status != "PENDING" || input.Provider != "NAGAD" || input.Limit != 5 || input.Offset != 10 {
				t.Fatalf("unexpected filters: %+v", input)
			}
			return []*domain.RequestView{{Request: *sampleRequest("req-1"), Redacted: true}}, nil
		},
	})

	req := authenticated(httptest.NewRequest(http.MethodGet, "/requests?status=PENDING&provider=NAGAD&limit=5&offset=10", nil), member("user-9"))
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListRequestsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Requests) != 1 || !resp.Requests[0].Redacted {
		t.Fatalf("expected one redacted request, got %+v", resp.Requests)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
