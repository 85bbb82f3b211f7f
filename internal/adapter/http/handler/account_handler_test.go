package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/adapter/http/dto"
	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

type accountServiceStub struct {
	openFn     func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	getFn      func(ctx context.Context, id string) (*domain.Account, error)
	balancesFn func(ctx context.Context, accountID string, at time.Time) (domain.Balances, error)
	closeFn    func(ctx context.Context, accountID string) error
}

func (s *accountServiceStub) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.openFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) GetBalances(ctx context.Context, accountID string, at time.Time) (domain.Balances, error) {
	return s.balancesFn(ctx, accountID, at)
}

func (s *accountServiceStub) CloseAccount(ctx context.Context, accountID string) error {
	return s.closeFn(ctx, accountID)
}

type eventReaderStub struct {
	events []*domain.OutboxEvent
}

func (s *eventReaderStub) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	return s.events, nil
}

func newAccountStub() *accountServiceStub {
	return &accountServiceStub{
		openFn: func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			return &domain.Account{ID: "acc-1", ProductID: input.ProductID, Denomination: "USD"}, nil
		},
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return &domain.Account{ID: id, Denomination: "USD"}, nil
		},
		balancesFn: func(ctx context.Context, accountID string, at time.Time) (domain.Balances, error) {
			return domain.Balances{}, nil
		},
		closeFn: func(ctx context.Context, accountID string) error { return nil },
	}
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Open_Success(t *testing.T) {
	stub := newAccountStub()
	var captured usecase.OpenAccountInput
	stub.openFn = func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
		captured = input
		return &domain.Account{ID: "acc-1", ProductID: input.ProductID, Denomination: "USD"}, nil
	}
	handler := NewAccountHandler(stub, &eventReaderStub{})

	body, _ := json.Marshal(dto.OpenAccountRequest{
		ProductID: "savings-std",
		Flags:     []dto.TierFlagRequest{{Name: "PREMIUM", ActivatedAt: time.Now()}},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ProductID != "savings-std" || len(captured.Flags) != 1 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Open_InvalidJSON(t *testing.T) {
	stub := newAccountStub()
	stub.openFn = func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
		t.Fatal("OpenAccount should not be called for invalid payload")
		return nil, nil
	}
	handler := NewAccountHandler(stub, &eventReaderStub{})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Open_UnknownProduct(t *testing.T) {
	stub := newAccountStub()
	stub.openFn = func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
		return nil, domain.ErrProductNotFound
	}
	handler := NewAccountHandler(stub, &eventReaderStub{})

	body, _ := json.Marshal(dto.OpenAccountRequest{ProductID: "missing"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	stub := newAccountStub()
	stub.getFn = func(ctx context.Context, id string) (*domain.Account, error) {
		return nil, domain.ErrAccountNotFound
	}
	handler := NewAccountHandler(stub, &eventReaderStub{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_GetBalances(t *testing.T) {
	stub := newAccountStub()
	stub.balancesFn = func(ctx context.Context, accountID string, at time.Time) (domain.Balances, error) {
		return domain.Balances{
			{Address: domain.AddressDefault, Denomination: "USD", Phase: domain.PhaseCommitted}: decimal.RequireFromString("750"),
		}, nil
	}
	handler := NewAccountHandler(stub, &eventReaderStub{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/balances", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.GetBalances(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalancesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Balances) != 1 || !resp.Balances[0].Amount.Equal(decimal.RequireFromString("750")) {
		t.Fatalf("unexpected balances: %+v", resp.Balances)
	}
}

func TestAccountHandler_Close_AlreadyClosed(t *testing.T) {
	stub := newAccountStub()
	stub.closeFn = func(ctx context.Context, accountID string) error {
		return domain.ErrAccountClosed
	}
	handler := NewAccountHandler(stub, &eventReaderStub{})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/close", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Close(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Close_ServiceError(t *testing.T) {
	stub := newAccountStub()
	stub.closeFn = func(ctx context.Context, accountID string) error {
		return errors.New("db error")
	}
	handler := NewAccountHandler(stub, &eventReaderStub{})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/close", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Close(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAccountHandler_ListEvents(t *testing.T) {
	events := &eventReaderStub{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: "fee_charged", AggregateID: "acc-1"},
		},
	}
	handler := NewAccountHandler(newAccountStub(), events)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/events", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.ListEvents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []dto.EventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].EventType != "fee_charged" {
		t.Fatalf("unexpected events: %+v", resp)
	}
}
