package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/depositcore/internal/adapter/http/dto"
	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetBalances(ctx context.Context, accountID string, at time.Time) (domain.Balances, error)
	CloseAccount(ctx context.Context, accountID string) error
}

// EventReader lists an aggregate's outbox events.
type EventReader interface {
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	events    EventReader
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, events EventReader) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, events: events}
}

// Open opens a new deposit account.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.OpenAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to open account", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// GetBalances retrieves an account's balances as of a value date. An
// omitted "at" query parameter means now.
func (h *AccountHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	at := parseTimeQuery(r, "at", time.Now().UTC())

	balances, err := h.accountUC.GetBalances(r.Context(), id, at)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balances", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(id, at, balances))
}

// Close closes an account, returning residual accrued interest and
// zeroing the lifetime trackers.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.accountUC.CloseAccount(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to close account", err.Error())

		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// ListEvents lists an account's notification events.
func (h *AccountHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, offset := domain.ClampPagination(parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))

	events, err := h.events.GetByAggregate(r.Context(), domain.AggregateTypeAccount, id, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}
