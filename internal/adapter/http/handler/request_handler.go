package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/takapay/takapay/internal/adapter/http/dto"
	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

// RequestService defines the behavior needed by RequestHandler.
type RequestService interface {
	CreateRequest(ctx context.Context, actor *domain.User, input usecase.CreateRequestInput) (*domain.MoneyRequest, error)
	AcceptRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.MoneyRequest, error)
	FulfillRequest(ctx context.Context, actor *domain.User, requestID string, evidence domain.Evidence) (*domain.MoneyRequest, error)
	VerifyRequest(ctx context.Context, actor *domain.User, requestID string, input usecase.VerifyInput) (*domain.MoneyRequest, error)
	CancelRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.MoneyRequest, error)
	GetRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.RequestView, error)
	ListRequests(ctx context.Context, actor *domain.User, input usecase.ListRequestsInput) ([]*domain.RequestView, error)
}

// RequestHandler handles money request HTTP requests.
type RequestHandler struct {
	requestUC RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requestUC RequestService) *RequestHandler {
	return &RequestHandler{requestUC: requestUC}
}

// Create creates a new money request.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	var req dto.CreateMoneyRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	request, err := h.requestUC.CreateRequest(r.Context(), user, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RequestFromDomain(request))
}

// Accept claims a pending request for fulfillment.
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	request, err := h.requestUC.AcceptRequest(r.Context(), user, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to accept request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(request))
}

// Fulfill submits payment evidence for an accepted request.
func (h *RequestHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	var req dto.FulfillRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	request, err := h.requestUC.FulfillRequest(r.Context(), user, id, req.ToEvidence())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to fulfill request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(request))
}

// Verify settles a fulfilled request with an approve or reject decision.
func (h *RequestHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	var req dto.VerifyRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	request, err := h.requestUC.VerifyRequest(r.Context(), user, id, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(request))
}

// Cancel cancels a request and refunds the reserved funds.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	request, err := h.requestUC.CancelRequest(r.Context(), user, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(request))
}

// Get retrieves a request by ID, redacted per the caller's visibility.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing request ID", "")
		return
	}

	view, err := h.requestUC.GetRequest(r.Context(), user, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromView(view))
}

// List lists requests visible to the caller.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	user := actor(w, r)
	if user == nil {
		return
	}

	views, err := h.requestUC.ListRequests(r.Context(), user, usecase.ListRequestsInput{
		Status:   r.URL.Query().Get("status"),
		Provider: r.URL.Query().Get("provider"),
		Limit:    parseIntQuery(r, "limit", 20),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list requests", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListRequestsResponse{
		Requests: dto.RequestsFromViews(views),
		Total:    int64(len(views)),
	})
}
