package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/infrastructure/metrics"
)

var minRequestAmount = decimal.RequireFromString(MinRequestAmount)

// RequestUseCase drives the money request lifecycle. Every state change runs
// in a single database transaction together with its ledger entries, outbox
// event and audit log.
type RequestUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	requestRepo RequestRepository
	ledgerRepo  TransactionRepository
	feeProvider FeeSettingsProvider
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	refGen      ReferenceGenerator
	metrics     *metrics.Metrics
	pendingTTL  time.Duration

	// RejectionPolicy decides whether rejecting a fulfillment refunds the
	// requester. Nil means always refund, which keeps money conserved when
	// the admin judges the payout never happened.
	RejectionPolicy func(r *domain.MoneyRequest) bool
}

// NewRequestUseCase creates a new RequestUseCase.
func NewRequestUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	requestRepo RequestRepository,
	ledgerRepo TransactionRepository,
	feeProvider FeeSettingsProvider,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	refGen ReferenceGenerator,
	metrics *metrics.Metrics,
	pendingTTL time.Duration,
) *RequestUseCase {
	return &RequestUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		requestRepo: requestRepo,
		ledgerRepo:  ledgerRepo,
		feeProvider: feeProvider,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		refGen:      refGen,
		metrics:     metrics,
		pendingTTL:  pendingTTL,
	}
}

// CreateRequestInput represents input for creating a money request.
type CreateRequestInput struct {
	Amount          decimal.Decimal
	Provider        string
	RecipientNumber string
	Description     string
}

// CreateRequest validates the input, computes fees, debits the requester's
// wallet for amount plus fees and records the PENDING request. The debit and
// the request are committed atomically; if the wallet cannot cover the total
// nothing is written.
func (uc *RequestUseCase) CreateRequest(ctx context.Context, actor *domain.User, input CreateRequestInput) (*domain.MoneyRequest, error) {
	start := time.Now()

	if !actor.Active {
		return nil, domain.ErrAccountInactive
	}

	provider, err := domain.ParseProvider(input.Provider)
	if err != nil {
		return nil, err
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if input.Amount.LessThan(minRequestAmount) {
		return nil, domain.ErrAmountBelowMin
	}
	recipient := strings.TrimSpace(input.RecipientNumber)
	if recipient == "" {
		return nil, domain.ErrMissingRecipient
	}

	settings, err := uc.feeProvider.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	fee, err := domain.ComputeFee(input.Amount, settings)
	if err != nil {
		return nil, err
	}
	total := input.Amount.Add(fee)

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()

	before, after, err := uc.accountRepo.AdjustBalance(txCtx, tx, actor.ID, total.Neg(), now)
	if err != nil {
		return nil, err
	}

	request := &domain.MoneyRequest{
		ID:              uc.idGen.Generate(),
		RequesterID:     actor.ID,
		Provider:        provider,
		Amount:          input.Amount,
		Fees:            fee,
		TotalAmount:     total,
		RecipientNumber: recipient,
		Reference:       uc.refGen.NewReference(string(provider)),
		Status:          domain.StatusPending,
		Description:     input.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	entry := &domain.WalletTransaction{
		ID:            uc.idGen.Generate(),
		AccountID:     actor.ID,
		Type:          domain.TxMobileMoneyOut,
		Amount:        total.Neg(),
		Reference:     request.Reference,
		BalanceBefore: before,
		BalanceAfter:  after,
		CreatedAt:     now,
	}
	if err := uc.ledgerRepo.Create(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Create(txCtx, tx, request); err != nil {
		return nil, err
	}

	if err := uc.emitRequestEvent(txCtx, tx, request, domain.EventTypeRequestCreated, now); err != nil {
		return nil, err
	}
	if err := uc.writeAudit(txCtx, tx, actor.ID, domain.AuditActionRequestCreate, request.ID, nil, domain.MarshalState(request)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsCreated.Inc()
		uc.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}

	return request, nil
}

// AcceptRequest claims a PENDING request for actor. Concurrent acceptances
// race on a conditional update; exactly one wins, the rest get
// ErrRequestConflict.
func (uc *RequestUseCase) AcceptRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.MoneyRequest, error) {
	start := time.Now()

	if !actor.Active {
		return nil, domain.ErrAccountInactive
	}

	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := request.AcceptableBy(actor); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	patch := RequestPatch{
		Status:      domain.StatusAccepted,
		FulfillerID: &actor.ID,
		AcceptedAt:  &now,
		UpdatedAt:   now,
	}

	matched, err := uc.requestRepo.UpdateIf(txCtx, tx, requestID, domain.StatusPending, true, patch)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, uc.resolveRace(ctx, requestID, "accept")
	}

	request.Status = domain.StatusAccepted
	request.FulfillerID = &actor.ID
	request.AcceptedAt = &now
	request.UpdatedAt = now

	if err := uc.emitRequestEvent(txCtx, tx, request, domain.EventTypeRequestAccepted, now); err != nil {
		return nil, err
	}
	if err := uc.writeAudit(txCtx, tx, actor.ID, domain.AuditActionRequestAccept, request.ID, nil, domain.MarshalState(request)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsAccepted.Inc()
		uc.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}

	return request, nil
}

// FulfillRequest records the fulfiller's payout evidence and moves the
// request to FULFILLED, awaiting admin verification.
func (uc *RequestUseCase) FulfillRequest(ctx context.Context, actor *domain.User, requestID string, evidence domain.Evidence) (*domain.MoneyRequest, error) {
	start := time.Now()

	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := request.FulfillableBy(actor, evidence); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	patch := RequestPatch{
		Status:        domain.StatusFulfilled,
		TransactionID: &evidence.TransactionID,
		SenderNumber:  &evidence.SenderNumber,
		Screenshot:    &evidence.Screenshot,
		Notes:         &evidence.Notes,
		FulfilledAt:   &now,
		UpdatedAt:     now,
	}

	matched, err := uc.requestRepo.UpdateIf(txCtx, tx, requestID, domain.StatusAccepted, false, patch)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, uc.resolveRace(ctx, requestID, "fulfill")
	}

	request.Status = domain.StatusFulfilled
	request.TransactionID = evidence.TransactionID
	request.SenderNumber = evidence.SenderNumber
	request.Screenshot = evidence.Screenshot
	request.Notes = evidence.Notes
	request.FulfilledAt = &now
	request.UpdatedAt = now

	if err := uc.emitRequestEvent(txCtx, tx, request, domain.EventTypeRequestFulfilled, now); err != nil {
		return nil, err
	}
	if err := uc.writeAudit(txCtx, tx, actor.ID, domain.AuditActionRequestFulfill, request.ID, nil, domain.MarshalState(request)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsFulfilled.Inc()
		uc.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}

	return request, nil
}

// VerifyInput represents an admin's verdict on a fulfilled request.
type VerifyInput struct {
	Approve bool
	Notes   string
}

// VerifyRequest settles a FULFILLED request. Approval moves it to VERIFIED;
// rejection moves it to REJECTED and, per the rejection policy, refunds the
// requester's wallet.
func (uc *RequestUseCase) VerifyRequest(ctx context.Context, actor *domain.User, requestID string, input VerifyInput) (*domain.MoneyRequest, error) {
	start := time.Now()

	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := request.VerifiableBy(actor); err != nil {
		return nil, err
	}

	target := domain.StatusVerified
	action := domain.AuditActionRequestVerify
	eventType := domain.EventTypeRequestVerified
	if !input.Approve {
		target = domain.StatusRejected
		action = domain.AuditActionRequestReject
		eventType = domain.EventTypeRequestRejected
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	patch := RequestPatch{
		Status:       target,
		VerifiedByID: &actor.ID,
		UpdatedAt:    now,
	}
	if input.Notes != "" {
		patch.Notes = &input.Notes
	}

	matched, err := uc.requestRepo.UpdateIf(txCtx, tx, requestID, domain.StatusFulfilled, false, patch)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, uc.resolveRace(ctx, requestID, "verify")
	}

	request.Status = target
	request.VerifiedByID = &actor.ID
	if input.Notes != "" {
		request.Notes = input.Notes
	}
	request.UpdatedAt = now

	if !input.Approve && uc.shouldRefundOnReject(request) {
		if err := uc.refundRequester(txCtx, tx, request, now); err != nil {
			return nil, err
		}
	}

	if err := uc.emitRequestEvent(txCtx, tx, request, eventType, now); err != nil {
		return nil, err
	}
	if err := uc.writeAudit(txCtx, tx, actor.ID, action, request.ID, nil, domain.MarshalState(request)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		if input.Approve {
			uc.metrics.RequestsVerified.Inc()
		} else {
			uc.metrics.RequestsRejected.Inc()
		}
		uc.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}

	return request, nil
}

// CancelRequest cancels a request and refunds the requester's wallet with
// the full debited amount, fees included.
func (uc *RequestUseCase) CancelRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.MoneyRequest, error) {
	start := time.Now()

	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := request.CancellableBy(actor); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	patch := RequestPatch{
		Status:         domain.StatusCancelled,
		ClearFulfiller: true,
		UpdatedAt:      now,
	}

	matched, err := uc.requestRepo.UpdateIf(txCtx, tx, requestID, request.Status, false, patch)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, uc.resolveRace(ctx, requestID, "cancel")
	}

	request.Status = domain.StatusCancelled
	request.FulfillerID = nil
	request.UpdatedAt = now

	if err := uc.refundRequester(txCtx, tx, request, now); err != nil {
		return nil, err
	}

	if err := uc.emitRequestEvent(txCtx, tx, request, domain.EventTypeRequestCancelled, now); err != nil {
		return nil, err
	}
	if err := uc.writeAudit(txCtx, tx, actor.ID, domain.AuditActionRequestCancel, request.ID, nil, domain.MarshalState(request)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsCancelled.Inc()
		uc.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}

	return request, nil
}

// ExpireRequest moves a stale PENDING request to EXPIRED and refunds the
// requester. It is invoked by the background sweep, not by users.
func (uc *RequestUseCase) ExpireRequest(ctx context.Context, requestID string) error {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := request.Expirable(now, uc.pendingTTL); err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	patch := RequestPatch{
		Status:    domain.StatusExpired,
		UpdatedAt: now,
	}

	matched, err := uc.requestRepo.UpdateIf(txCtx, tx, requestID, domain.StatusPending, true, patch)
	if err != nil {
		return err
	}
	if !matched {
		// Someone accepted or cancelled it while the sweep was running.
		return domain.ErrRequestConflict
	}

	request.Status = domain.StatusExpired
	request.UpdatedAt = now

	if err := uc.refundRequester(txCtx, tx, request, now); err != nil {
		return err
	}

	if err := uc.emitRequestEvent(txCtx, tx, request, domain.EventTypeRequestExpired, now); err != nil {
		return err
	}
	if err := uc.writeAudit(txCtx, tx, "system", domain.AuditActionRequestExpire, request.ID, nil, domain.MarshalState(request)); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsExpired.Inc()
	}

	return nil
}

// ListStalePending returns PENDING requests older than the pending TTL, for
// the expiry sweep.
func (uc *RequestUseCase) ListStalePending(ctx context.Context, limit int) ([]*domain.MoneyRequest, error) {
	cutoff := time.Now().UTC().Add(-uc.pendingTTL)
	return uc.requestRepo.ListStalePending(ctx, cutoff, limit)
}

// GetRequest returns the actor-specific view of a request. Requests the
// actor may not see at all are reported as not found rather than forbidden,
// so their existence does not leak.
func (uc *RequestUseCase) GetRequest(ctx context.Context, actor *domain.User, requestID string) (*domain.RequestView, error) {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.VisibleTo(actor) {
		return nil, domain.ErrRequestNotFound
	}

	views, err := uc.buildViews(ctx, actor, []*domain.MoneyRequest{request})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ListRequestsInput represents input for listing money requests.
type ListRequestsInput struct {
	Status   string
	Provider string
	Limit    int
	Offset   int
}

// ListRequests lists requests visible to the actor, newest first. Members
// see their own requests plus the open PENDING pool; admins see everything.
func (uc *RequestUseCase) ListRequests(ctx context.Context, actor *domain.User, input ListRequestsInput) ([]*domain.RequestView, error) {
	filter := RequestFilter{
		Limit:  input.Limit,
		Offset: input.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}
	if !actor.Role.SeesEverything() {
		filter.ViewerID = actor.ID
	}
	if input.Status != "" {
		status, err := domain.ParseStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if input.Provider != "" {
		provider, err := domain.ParseProvider(input.Provider)
		if err != nil {
			return nil, err
		}
		filter.Provider = &provider
	}

	requests, err := uc.requestRepo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	return uc.buildViews(ctx, actor, requests)
}

func (uc *RequestUseCase) buildViews(ctx context.Context, actor *domain.User, requests []*domain.MoneyRequest) ([]*domain.RequestView, error) {
	idSet := make(map[string]bool)
	for _, r := range requests {
		idSet[r.RequesterID] = true
		if r.FulfillerID != nil {
			idSet[*r.FulfillerID] = true
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	accounts := make(map[string]*domain.Account, len(ids))
	if len(ids) > 0 {
		list, err := uc.accountRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, a := range list {
			accounts[a.ID] = a
		}
	}

	views := make([]*domain.RequestView, 0, len(requests))
	for _, r := range requests {
		var fulfiller *domain.Account
		if r.FulfillerID != nil {
			fulfiller = accounts[*r.FulfillerID]
		}
		views = append(views, domain.BuildView(r, accounts[r.RequesterID], fulfiller, actor))
	}
	return views, nil
}

// resolveRace re-reads the request after a conditional update matched no row
// and distinguishes a lost race from a plainly illegal transition.
func (uc *RequestUseCase) resolveRace(ctx context.Context, requestID, event string) error {
	current, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if current.FulfillerID != nil && event == "accept" {
		return domain.ErrRequestConflict
	}
	return &domain.TransitionError{RequestID: requestID, From: current.Status, Event: event}
}

func (uc *RequestUseCase) shouldRefundOnReject(r *domain.MoneyRequest) bool {
	if uc.RejectionPolicy == nil {
		return true
	}
	return uc.RejectionPolicy(r)
}

// refundRequester credits the full debited total back to the requester's
// wallet and records the matching ledger entry under the request's reference.
func (uc *RequestUseCase) refundRequester(ctx context.Context, tx Transaction, r *domain.MoneyRequest, now time.Time) error {
	before, after, err := uc.accountRepo.AdjustBalance(ctx, tx, r.RequesterID, r.TotalAmount, now)
	if err != nil {
		return err
	}

	entry := &domain.WalletTransaction{
		ID:            uc.idGen.Generate(),
		AccountID:     r.RequesterID,
		Type:          domain.TxMobileMoneyRefund,
		Amount:        r.TotalAmount,
		Reference:     r.Reference,
		BalanceBefore: before,
		BalanceAfter:  after,
		CreatedAt:     now,
	}
	return uc.ledgerRepo.Create(ctx, tx, entry)
}

func (uc *RequestUseCase) emitRequestEvent(ctx context.Context, tx Transaction, r *domain.MoneyRequest, eventType string, now time.Time) error {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   r.ID,
		AggregateType: domain.AggregateTypeRequest,
		EventType:     eventType,
		Payload: map[string]any{
			"request_id":   r.ID,
			"requester_id": r.RequesterID,
			"provider":     string(r.Provider),
			"amount":       r.Amount.String(),
			"total_amount": r.TotalAmount.String(),
			"status":       string(r.Status),
		},
		CreatedAt: now,
		Published: false,
	}
	if r.FulfillerID != nil {
		event.Payload["fulfiller_id"] = *r.FulfillerID
	}
	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *RequestUseCase) writeAudit(ctx context.Context, tx Transaction, userID string, action domain.AuditAction, resourceID string, before, after domain.JSON) error {
	if uc.auditRepo == nil {
		return nil
	}
	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       userID,
		Action:       string(action),
		ResourceType: "money_request",
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	}
	return uc.auditRepo.CreateTx(ctx, tx, log)
}
