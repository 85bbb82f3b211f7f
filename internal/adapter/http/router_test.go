package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/depositcore/internal/adapter/http/handler"
	apimiddleware "github.com/iho/depositcore/internal/adapter/http/middleware"
	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
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
	rl := apimiddleware.NewRateLimiter(1, 1)
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

	body := `{"product_id":"savings-std"}`
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
		t.Fatalf("failed to walk routes: %v", err)
	}

	expected := []string{
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"POST /api/v1/accounts/{id}/close",
		"GET /api/v1/accounts/{id}/balances",
		"POST /api/v1/accounts/{id}/batches",
		"POST /api/v1/accounts/{id}/accruals",
		"POST /api/v1/accounts/{id}/applications",
		"PUT /api/v1/accounts/{id}/schedule",
		"GET /api/v1/batches/{batchID}",
	}
	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %q to be registered, got %v", route, seen)
		}
	}
}

func newRouterConfig(mutators ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		AccountHandler:  handler.NewAccountHandler(stubAccountService{}, stubEventReader{}),
		PostingHandler:  handler.NewPostingHandler(stubPostingService{}),
		InterestHandler: handler.NewInterestHandler(stubAccrualService{}, stubApplicationService{}, stubScheduleReader{}),
		HealthHandler:   handler.NewHealthHandler(nil, nil),
	}
	for _, m := range mutators {
		m(&cfg)
	}
	return cfg
}

type stubAccountService struct{}

func (stubAccountService) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: "acc-1", ProductID: input.ProductID}, nil
}

func (stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (stubAccountService) GetBalances(ctx context.Context, accountID string, at time.Time) (domain.Balances, error) {
	return domain.Balances{}, nil
}

func (stubAccountService) CloseAccount(ctx context.Context, accountID string) error {
	return nil
}

type stubEventReader struct{}

func (stubEventReader) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

type stubPostingService struct{}

func (stubPostingService) SubmitBatch(ctx context.Context, input usecase.SubmitBatchInput) (*usecase.SubmitBatchResult, error) {
	return &usecase.SubmitBatchResult{Batch: &domain.PostingBatch{ID: "batch-1"}}, nil
}

func (stubPostingService) GetBatch(ctx context.Context, batchID string) (*domain.PostingBatch, error) {
	return &domain.PostingBatch{ID: batchID}, nil
}

type stubAccrualService struct{}

func (stubAccrualService) RunDailyAccrual(ctx context.Context, accountID string, asOf time.Time) (*usecase.AccrualResult, error) {
	return &usecase.AccrualResult{AccountID: accountID}, nil
}

type stubApplicationService struct{}

func (stubApplicationService) RunApplication(ctx context.Context, accountID string, now time.Time) (*usecase.ApplicationResult, error) {
	return &usecase.ApplicationResult{AccountID: accountID}, nil
}

func (stubApplicationService) MarkDue(ctx context.Context, accountID string, now time.Time) (*domain.ApplicationState, error) {
	return &domain.ApplicationState{AccountID: accountID}, nil
}

func (stubApplicationService) ChangeSchedule(ctx context.Context, accountID string, schedule domain.ApplicationSchedule, effectiveFrom time.Time) (*domain.ApplicationState, error) {
	return &domain.ApplicationState{AccountID: accountID}, nil
}

type stubScheduleReader struct{}

func (stubScheduleReader) Get(ctx context.Context, accountID string) (*domain.ApplicationState, error) {
	return &domain.ApplicationState{AccountID: accountID}, nil
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
