package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc        func(ctx context.Context, account *domain.Account) error
	CreateTxFunc      func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsFunc      func(ctx context.Context, ids []string) ([]*domain.Account, error)
	AdjustBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) (decimal.Decimal, decimal.Decimal, error)
	ListFunc          func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores an account directly, for test setup.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

// Balance reads the current stored balance, for test assertions.
func (m *MockAccountRepository) Balance(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			copied := *acc
			accounts = append(accounts, &copied)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if m.AdjustBalanceFunc != nil {
		return m.AdjustBalanceFunc(ctx, tx, id, delta, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return decimal.Zero, decimal.Zero, domain.ErrAccountNotFound
	}
	after := acc.Balance.Add(delta)
	if after.IsNegative() {
		return decimal.Zero, decimal.Zero, &domain.InsufficientBalanceError{
			AccountID: id,
			Required:  delta.Neg(),
			Available: acc.Balance,
		}
	}
	before := acc.Balance
	acc.Balance = after
	acc.Version++
	acc.UpdatedAt = updatedAt
	return before, after, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		copied := *acc
		accounts = append(accounts, &copied)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// MockRequestRepository is a mock implementation of RequestRepository. Its
// default UpdateIf applies the same compare-and-set semantics the SQL
// implementation does, so races resolve the way production would.
type MockRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.MoneyRequest

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, request *domain.MoneyRequest) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.MoneyRequest, error)
	UpdateIfFunc         func(ctx context.Context, tx usecase.Transaction, id string, expected domain.RequestStatus, requireUnassigned bool, patch usecase.RequestPatch) (bool, error)
	QueryFunc            func(ctx context.Context, filter usecase.RequestFilter) ([]*domain.MoneyRequest, error)
	ListStalePendingFunc func(ctx context.Context, olderThan time.Time, limit int) ([]*domain.MoneyRequest, error)
}

func NewMockRequestRepository() *MockRequestRepository {
	return &MockRequestRepository{
		requests: make(map[string]*domain.MoneyRequest),
	}
}

// Seed stores a request directly, for test setup.
func (m *MockRequestRepository) Seed(request *domain.MoneyRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[request.ID] = request
}

func (m *MockRequestRepository) Create(ctx context.Context, tx usecase.Transaction, request *domain.MoneyRequest) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, request)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *request
	m.requests[request.ID] = &copied
	return nil
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.requests[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, domain.ErrRequestNotFound
}

func (m *MockRequestRepository) UpdateIf(ctx context.Context, tx usecase.Transaction, id string, expected domain.RequestStatus, requireUnassigned bool, patch usecase.RequestPatch) (bool, error) {
	if m.UpdateIfFunc != nil {
		return m.UpdateIfFunc(ctx, tx, id, expected, requireUnassigned, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return false, domain.ErrRequestNotFound
	}
	if r.Status != expected {
		return false, nil
	}
	if requireUnassigned && r.FulfillerID != nil {
		return false, nil
	}
	r.Status = patch.Status
	if patch.FulfillerID != nil {
		r.FulfillerID = patch.FulfillerID
	}
	if patch.ClearFulfiller {
		r.FulfillerID = nil
	}
	if patch.VerifiedByID != nil {
		r.VerifiedByID = patch.VerifiedByID
	}
	if patch.TransactionID != nil {
		r.TransactionID = *patch.TransactionID
	}
	if patch.SenderNumber != nil {
		r.SenderNumber = *patch.SenderNumber
	}
	if patch.Screenshot != nil {
		r.Screenshot = *patch.Screenshot
	}
	if patch.Notes != nil {
		r.Notes = *patch.Notes
	}
	if patch.AcceptedAt != nil {
		r.AcceptedAt = patch.AcceptedAt
	}
	if patch.FulfilledAt != nil {
		r.FulfilledAt = patch.FulfilledAt
	}
	r.UpdatedAt = patch.UpdatedAt
	return true, nil
}

func (m *MockRequestRepository) Query(ctx context.Context, filter usecase.RequestFilter) ([]*domain.MoneyRequest, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.MoneyRequest
	for _, r := range m.requests {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.Provider != nil && r.Provider != *filter.Provider {
			continue
		}
		if filter.ViewerID != "" {
			participant := r.RequesterID == filter.ViewerID ||
				(r.FulfillerID != nil && *r.FulfillerID == filter.ViewerID)
			if !participant && r.Status != domain.StatusPending {
				continue
			}
		}
		copied := *r
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockRequestRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.MoneyRequest, error) {
	if m.ListStalePendingFunc != nil {
		return m.ListStalePendingFunc(ctx, olderThan, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.MoneyRequest
	for _, r := range m.requests {
		if r.Status != domain.StatusPending || !r.CreatedAt.Before(olderThan) {
			continue
		}
		copied := *r
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	entries []*domain.WalletTransaction

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.WalletTransaction) error
	ListByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.WalletTransaction, error)
	ListByAccountAscFunc func(ctx context.Context, accountID string) ([]*domain.WalletTransaction, error)
	GetByReferenceFunc   func(ctx context.Context, reference string) ([]*domain.WalletTransaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

// Entries returns everything written so far, for test assertions.
func (m *MockTransactionRepository) Entries() []*domain.WalletTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.WalletTransaction, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.WalletTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	asc, _ := m.ListByAccountAsc(ctx, accountID)
	var out []*domain.WalletTransaction
	for i := len(asc) - 1; i >= 0; i-- {
		out = append(out, asc[i])
	}
	return out, nil
}

func (m *MockTransactionRepository) ListByAccountAsc(ctx context.Context, accountID string) ([]*domain.WalletTransaction, error) {
	if m.ListByAccountAscFunc != nil {
		return m.ListByAccountAscFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.WalletTransaction
	for _, e := range m.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string) ([]*domain.WalletTransaction, error) {
	if m.GetByReferenceFunc != nil {
		return m.GetByReferenceFunc(ctx, reference)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.WalletTransaction
	for _, e := range m.entries {
		if e.Reference == reference {
			out = append(out, e)
		}
	}
	return out, nil
}

// MockFeeSettingsRepository is a mock implementation of FeeSettingsRepository.
type MockFeeSettingsRepository struct {
	mu       sync.RWMutex
	settings *domain.FeeSettings

	GetActiveFunc func(ctx context.Context) (*domain.FeeSettings, error)
	CreateFunc    func(ctx context.Context, settings *domain.FeeSettings) error
}

func NewMockFeeSettingsRepository(settings *domain.FeeSettings) *MockFeeSettingsRepository {
	return &MockFeeSettingsRepository{settings: settings}
}

func (m *MockFeeSettingsRepository) GetActive(ctx context.Context) (*domain.FeeSettings, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, domain.ErrNoActiveFeeSettings
	}
	return m.settings, nil
}

func (m *MockFeeSettingsRepository) Create(ctx context.Context, settings *domain.FeeSettings) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, settings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	return nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns everything emitted so far, for test assertions.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc   func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc     func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Logs returns everything recorded so far, for test assertions.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditLog, len(m.logs))
	copy(out, m.logs)
	return out
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockReferenceGenerator is a mock implementation of ReferenceGenerator.
type MockReferenceGenerator struct {
	NewReferenceFunc func(prefix string) string
	counter          int
	mu               sync.Mutex
}

func NewMockReferenceGenerator() *MockReferenceGenerator {
	return &MockReferenceGenerator{}
}

func (m *MockReferenceGenerator) NewReference(prefix string) string {
	if m.NewReferenceFunc != nil {
		return m.NewReferenceFunc(prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%s-%06d", prefix, m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
