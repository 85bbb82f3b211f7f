package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/depositcore/internal/adapter/http/dto"
	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// AccrualService defines the behavior needed for accrual runs.
type AccrualService interface {
	RunDailyAccrual(ctx context.Context, accountID string, asOf time.Time) (*usecase.AccrualResult, error)
}

// ApplicationService defines the behavior needed for application runs.
type ApplicationService interface {
	RunApplication(ctx context.Context, accountID string, now time.Time) (*usecase.ApplicationResult, error)
	MarkDue(ctx context.Context, accountID string, now time.Time) (*domain.ApplicationState, error)
	ChangeSchedule(ctx context.Context, accountID string, schedule domain.ApplicationSchedule, effectiveFrom time.Time) (*domain.ApplicationState, error)
}

// ScheduleReader retrieves application schedule state.
type ScheduleReader interface {
	Get(ctx context.Context, accountID string) (*domain.ApplicationState, error)
}

// InterestHandler handles accrual and application HTTP requests.
type InterestHandler struct {
	accrualUC     AccrualService
	applicationUC ApplicationService
	schedules     ScheduleReader
}

// NewInterestHandler creates a new InterestHandler.
func NewInterestHandler(accrualUC AccrualService, applicationUC ApplicationService, schedules ScheduleReader) *InterestHandler {
	return &InterestHandler{
		accrualUC:     accrualUC,
		applicationUC: applicationUC,
		schedules:     schedules,
	}
}

// RunAccrual accrues one day of interest for an account.
func (h *InterestHandler) RunAccrual(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	// Body is optional; an empty request accrues as of now.
	var req dto.RunAccrualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	result, err := h.accrualUC.RunDailyAccrual(r.Context(), accountID, asOf)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to run accrual", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccrualFromResult(result))
}

// RunApplication executes a due interest application for an account. The
// schedule is driven through DUE first, so a WAITING schedule whose time
// has come fires in the same call.
func (h *InterestHandler) RunApplication(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.RunApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	now := time.Now().UTC()
	if req.At != nil {
		now = req.At.UTC()
	}

	if _, err := h.applicationUC.MarkDue(r.Context(), accountID, now); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to mark schedule due", err.Error())

		return
	}

	result, err := h.applicationUC.RunApplication(r.Context(), accountID, now)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to run application", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ApplicationFromResult(result))
}

// GetSchedule retrieves an account's application schedule state.
func (h *InterestHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	state, err := h.schedules.Get(r.Context(), accountID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get schedule", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(state))
}

// ChangeSchedule applies new schedule parameters from an effective time.
func (h *InterestHandler) ChangeSchedule(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.ChangeScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	state, err := h.applicationUC.ChangeSchedule(r.Context(), accountID, req.ToSchedule(), req.EffectiveFrom)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to change schedule", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleFromDomain(state))
}
