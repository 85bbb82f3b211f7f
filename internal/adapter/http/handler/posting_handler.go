package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/depositcore/internal/adapter/http/dto"
	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// PostingService defines the behavior needed by PostingHandler.
type PostingService interface {
	SubmitBatch(ctx context.Context, input usecase.SubmitBatchInput) (*usecase.SubmitBatchResult, error)
	GetBatch(ctx context.Context, batchID string) (*domain.PostingBatch, error)
}

// PostingHandler handles posting batch HTTP requests.
type PostingHandler struct {
	postingUC PostingService
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(postingUC PostingService) *PostingHandler {
	return &PostingHandler{postingUC: postingUC}
}

// Submit submits a posting batch against an account. A vetoed batch is a
// successful request: the rejection rides in the response body with 200.
func (h *PostingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.SubmitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := domain.ValidateClientTransactionID(req.ClientTransactionID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid client transaction ID", err.Error())
		return
	}
	if err := domain.ValidateDetails(req.Details); err != nil {
		writeError(w, http.StatusBadRequest, "invalid details", err.Error())
		return
	}
	if len(req.Postings) == 0 {
		writeError(w, http.StatusBadRequest, "batch has no postings", "")
		return
	}

	result, err := h.postingUC.SubmitBatch(r.Context(), req.ToUseCaseInput(accountID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to submit batch", err.Error())

		return
	}

	status := http.StatusCreated
	if !result.Accepted() {
		status = http.StatusOK
	}

	writeJSON(w, status, dto.SubmitBatchFromResult(result))
}

// GetBatch retrieves a committed batch by ID.
func (h *PostingHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	batch, err := h.postingUC.GetBatch(r.Context(), batchID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get batch", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromDomain(batch))
}
