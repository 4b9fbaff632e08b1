package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/takapay/takapay/internal/adapter/http/handler"
	apimiddleware "github.com/takapay/takapay/internal/adapter/http/middleware"
	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"email":"rahim@example.com","full_name":"Rahim Uddin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/requests/",
		"GET /api/v1/requests/",
		"GET /api/v1/requests/{id}",
		"POST /api/v1/requests/{id}/accept",
		"POST /api/v1/requests/{id}/fulfill",
		"POST /api/v1/requests/{id}/verify",
		"POST /api/v1/requests/{id}/cancel",
		"POST /api/v1/transfers",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/transactions",
		"GET /api/v1/accounts/{id}/replay",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		RequestHandler:     handler.NewRequestHandler(&stubRequestService{}),
		AccountHandler:     handler.NewAccountHandler(&stubAccountService{}),
		TransferHandler:    handler.NewTransferHandler(&stubTransferService{}),
		TransactionHandler: handler.NewTransactionHandler(&stubLedgerService{}),
		HealthHandler:      &handler.HealthHandler{},
		Logger:             zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubRequestService struct{}

func (stubRequestService) CreateRequest(ctx context.Context, actor *domain.User, input usecase.CreateRequestInput) (*domain.MoneyRequest, error) {
	return &domain.MoneyRequest{ID: "req-1"}, nil
}

func (stubRequestService) AcceptRequest(ctx context.Context, actor *domain.User, id string) (*domain.MoneyRequest, error) {
	return &domain.MoneyRequest{ID: id}, nil
}

func (stubRequestService) FulfillRequest(ctx context.Context, actor *domain.User, id string, evidence domain.Evidence) (*domain.MoneyRequest, error) {
	return &domain.MoneyRequest{ID: id}, nil
}

func (stubRequestService) VerifyRequest(ctx context.Context, actor *domain.User, id string, input usecase.VerifyInput) (*domain.MoneyRequest, error) {
	return &domain.MoneyRequest{ID: id}, nil
}

func (stubRequestService) CancelRequest(ctx context.Context, actor *domain.User, id string) (*domain.MoneyRequest, error) {
	return &domain.MoneyRequest{ID: id}, nil
}

func (stubRequestService) GetRequest(ctx context.Context, actor *domain.User, id string) (*domain.RequestView, error) {
	return &domain.RequestView{Request: domain.MoneyRequest{ID: id}}, nil
}

func (stubRequestService) ListRequests(ctx context.Context, actor *domain.User, input usecase.ListRequestsInput) ([]*domain.RequestView, error) {
	return nil, nil
}

type stubAccountService struct{}

func (stubAccountService) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: "acc-1"}, nil
}

func (stubAccountService) GetAccount(ctx context.Context, actor *domain.User, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (stubAccountService) ListAccounts(ctx context.Context, actor *domain.User, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return nil, nil
}

type stubTransferService struct{}

func (stubTransferService) Transfer(ctx context.Context, actor *domain.User, input usecase.TransferInput) (*usecase.TransferResult, error) {
	return &usecase.TransferResult{Reference: "TRF-000001"}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) ListTransactions(ctx context.Context, actor *domain.User, input usecase.ListTransactionsInput) ([]*domain.WalletTransaction, error) {
	return nil, nil
}

func (stubLedgerService) ReplayAccount(ctx context.Context, actor *domain.User, accountID string) (*usecase.ReplayResult, error) {
	return &usecase.ReplayResult{AccountID: accountID, Consistent: true}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
