package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc  func(ctx context.Context, account *domain.Account) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Account, error)
	CloseFunc   func(ctx context.Context, tx usecase.Transaction, id string, closedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
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

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Close(ctx context.Context, tx usecase.Transaction, id string, closedAt time.Time) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, tx, id, closedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.ClosedAt = &closedAt
	acc.UpdatedAt = closedAt
	return nil
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.ProductConfig

	GetByIDFunc func(ctx context.Context, id string) (*domain.ProductConfig, error)
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]*domain.ProductConfig),
	}
}

func (m *MockProductRepository) Add(cfg *domain.ProductConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[cfg.ID] = cfg
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.ProductConfig, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if cfg, ok := m.products[id]; ok {
		return cfg, nil
	}
	return nil, domain.ErrProductNotFound
}

// MockPostingRepository keeps committed batches in memory and reimplements
// the value-date-ordered queries over them.
type MockPostingRepository struct {
	mu      sync.RWMutex
	batches []*domain.PostingBatch

	AppendBatchFunc func(ctx context.Context, tx usecase.Transaction, batch *domain.PostingBatch) error
}

func NewMockPostingRepository() *MockPostingRepository {
	return &MockPostingRepository{}
}

func (m *MockPostingRepository) AppendBatch(ctx context.Context, tx usecase.Transaction, batch *domain.PostingBatch) error {
	if m.AppendBatchFunc != nil {
		return m.AppendBatchFunc(ctx, tx, batch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, batch)
	return nil
}

func (m *MockPostingRepository) GetBatch(ctx context.Context, batchID string) (*domain.PostingBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.batches {
		if b.ID == batchID {
			return b, nil
		}
	}
	return nil, domain.ErrBatchNotFound
}

// Batches returns everything committed so far, value-date ordered.
func (m *MockPostingRepository) Batches() []*domain.PostingBatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.PostingBatch, len(m.batches))
	copy(out, m.batches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ValueDate.Before(out[j].ValueDate)
	})
	return out
}

func (m *MockPostingRepository) BalancesAt(ctx context.Context, accountID string, at time.Time) (domain.Balances, error) {
	balances := domain.Balances{}
	for _, b := range m.Batches() {
		if b.ValueDate.After(at) {
			continue
		}
		balances = balances.ApplyBatch(b, accountID)
	}
	return balances, nil
}

func (m *MockPostingRepository) BalancesBefore(ctx context.Context, accountID string, before time.Time) (domain.Balances, error) {
	balances := domain.Balances{}
	for _, b := range m.Batches() {
		if !b.ValueDate.Before(before) {
			continue
		}
		balances = balances.ApplyBatch(b, accountID)
	}
	return balances, nil
}

func (m *MockPostingRepository) ListSameDay(ctx context.Context, accountID string, day time.Time) ([]*domain.PostingBatch, error) {
	var out []*domain.PostingBatch
	for _, b := range m.Batches() {
		if domain.SameUTCDay(b.ValueDate, day) && touches(b, accountID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockPostingRepository) ListMonthToDate(ctx context.Context, accountID string, day time.Time) ([]*domain.PostingBatch, error) {
	var out []*domain.PostingBatch
	for _, b := range m.Batches() {
		if domain.SameUTCMonth(b.ValueDate, day) && !b.ValueDate.After(day) && touches(b, accountID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func touches(b *domain.PostingBatch, accountID string) bool {
	for _, p := range b.Postings {
		if p.AccountID == accountID {
			return true
		}
	}
	return false
}

// MockScheduleRepository is a mock implementation of ScheduleRepository.
type MockScheduleRepository struct {
	mu     sync.RWMutex
	states map[string]*domain.ApplicationState
}

func NewMockScheduleRepository() *MockScheduleRepository {
	return &MockScheduleRepository{
		states: make(map[string]*domain.ApplicationState),
	}
}

func (m *MockScheduleRepository) Get(ctx context.Context, accountID string) (*domain.ApplicationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.states[accountID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrScheduleNotFound
}

func (m *MockScheduleRepository) Save(ctx context.Context, tx usecase.Transaction, state *domain.ApplicationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *state
	m.states[state.AccountID] = &cp
	return nil
}

// MockCalendarRepository serves a fixed calendar.
type MockCalendarRepository struct {
	Cal *domain.Calendar
}

func (m *MockCalendarRepository) Calendar(ctx context.Context) (*domain.Calendar, error) {
	return m.Cal, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// Events returns everything created so far.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	Prefix  string
	counter int
}

func (m *MockIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	prefix := m.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return prefix + "-" + itoa(m.counter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
