package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID           string            `json:"id"`
	ProductID    string            `json:"product_id"`
	Denomination string            `json:"denomination"`
	OpenedAt     time.Time         `json:"opened_at"`
	ReopenedAt   *time.Time        `json:"reopened_at,omitempty"`
	ClosedAt     *time.Time        `json:"closed_at,omitempty"`
	Flags        []TierFlagRequest `json:"flags,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(account *domain.Account) AccountResponse {
	flags := make([]TierFlagRequest, 0, len(account.Flags))
	for _, f := range account.Flags {
		flag := TierFlagRequest{Name: f.Name, ActivatedAt: f.ActivatedAt}
		if !f.ExpiresAt.IsZero() {
			t := f.ExpiresAt
			flag.ExpiresAt = &t
		}
		flags = append(flags, flag)
	}

	return AccountResponse{
		ID:           account.ID,
		ProductID:    account.ProductID,
		Denomination: account.Denomination,
		OpenedAt:     account.OpenedAt,
		ReopenedAt:   account.ReopenedAt,
		ClosedAt:     account.ClosedAt,
		Flags:        flags,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

// BalanceResponse represents one balance line.
type BalanceResponse struct {
	Address      string          `json:"address"`
	Denomination string          `json:"denomination"`
	Phase        string          `json:"phase"`
	Amount       decimal.Decimal `json:"amount"`
}

// BalancesResponse represents an account's balance snapshot.
type BalancesResponse struct {
	AccountID string            `json:"account_id"`
	At        time.Time         `json:"at"`
	Balances  []BalanceResponse `json:"balances"`
}

// BalancesFromDomain converts a balance snapshot to a response, dropping
// zero lines.
func BalancesFromDomain(accountID string, at time.Time, balances domain.Balances) BalancesResponse {
	lines := make([]BalanceResponse, 0, len(balances))
	for key, amount := range balances {
		if amount.IsZero() {
			continue
		}
		lines = append(lines, BalanceResponse{
			Address:      string(key.Address),
			Denomination: key.Denomination,
			Phase:        string(key.Phase),
			Amount:       amount,
		})
	}

	return BalancesResponse{AccountID: accountID, At: at, Balances: lines}
}

// PostingResponse represents one committed movement.
type PostingResponse struct {
	AccountID    string          `json:"account_id"`
	Address      string          `json:"address"`
	Denomination string          `json:"denomination"`
	Phase        string          `json:"phase"`
	Amount       decimal.Decimal `json:"amount"`
}

// BatchResponse represents a committed posting batch.
type BatchResponse struct {
	ID                  string            `json:"id"`
	ClientTransactionID string            `json:"client_transaction_id"`
	ValueDate           time.Time         `json:"value_date"`
	InsertedAt          time.Time         `json:"inserted_at"`
	Details             map[string]string `json:"details,omitempty"`
	Postings            []PostingResponse `json:"postings"`
}

// BatchFromDomain converts a domain batch to a response.
func BatchFromDomain(batch *domain.PostingBatch) *BatchResponse {
	if batch == nil {
		return nil
	}

	postings := make([]PostingResponse, 0, len(batch.Postings))
	for _, p := range batch.Postings {
		postings = append(postings, PostingResponse{
			AccountID:    p.AccountID,
			Address:      string(p.Address),
			Denomination: p.Denomination,
			Phase:        string(p.Phase),
			Amount:       p.Amount,
		})
	}

	return &BatchResponse{
		ID:                  batch.ID,
		ClientTransactionID: batch.ClientTransactionID,
		ValueDate:           batch.ValueDate,
		InsertedAt:          batch.InsertedAt,
		Details:             batch.Details,
		Postings:            postings,
	}
}

// RejectionResponse represents a vetoed submission.
type RejectionResponse struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// ChargeResponse represents one assessed fee.
type ChargeResponse struct {
	FeeType     string          `json:"fee_type"`
	PaymentType string          `json:"payment_type,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// SubmitBatchResponse represents the outcome of a batch submission.
type SubmitBatchResponse struct {
	Accepted         bool               `json:"accepted"`
	Rejection        *RejectionResponse `json:"rejection,omitempty"`
	Batch            *BatchResponse     `json:"batch,omitempty"`
	SideBatch        *BatchResponse     `json:"side_batch,omitempty"`
	Charges          []ChargeResponse   `json:"charges,omitempty"`
	TrackerIncrement decimal.Decimal    `json:"tracker_increment"`
	Forfeited        decimal.Decimal    `json:"forfeited"`
	FullyWithdrawn   bool               `json:"fully_withdrawn"`
}

// SubmitBatchFromResult converts a submission result to a response.
func SubmitBatchFromResult(result *usecase.SubmitBatchResult) SubmitBatchResponse {
	resp := SubmitBatchResponse{
		Accepted:         result.Accepted(),
		Batch:            BatchFromDomain(result.Batch),
		SideBatch:        BatchFromDomain(result.SideBatch),
		TrackerIncrement: result.Tracker.TrackerIncrement,
		Forfeited:        result.Tracker.Forfeited,
		FullyWithdrawn:   result.Tracker.FullyWithdrawn,
	}

	if result.Rejection != nil {
		resp.Rejection = &RejectionResponse{
			Kind:   string(result.Rejection.Kind),
			Reason: result.Rejection.Reason,
		}
	}

	if result.Assessment != nil {
		for _, charge := range result.Assessment.Charges {
			resp.Charges = append(resp.Charges, ChargeResponse{
				FeeType:     charge.FeeType,
				PaymentType: charge.PaymentType,
				Amount:      charge.Amount,
			})
		}
	}

	return resp
}

// AccrualResponse represents one day's accrual run.
type AccrualResponse struct {
	AccountID string          `json:"account_id"`
	Day       time.Time       `json:"day"`
	Tier      string          `json:"tier"`
	Rate      decimal.Decimal `json:"rate"`
	Balance   decimal.Decimal `json:"balance"`
	Accrued   decimal.Decimal `json:"accrued"`
	Batch     *BatchResponse  `json:"batch,omitempty"`
}

// AccrualFromResult converts an accrual result to a response.
func AccrualFromResult(result *usecase.AccrualResult) AccrualResponse {
	return AccrualResponse{
		AccountID: result.AccountID,
		Day:       result.Day,
		Tier:      result.Tier,
		Rate:      result.Rate,
		Balance:   result.Balance,
		Accrued:   result.Accrued,
		Batch:     BatchFromDomain(result.Batch),
	}
}

// ApplicationResponse represents one interest application run.
type ApplicationResponse struct {
	AccountID string          `json:"account_id"`
	Accrued   decimal.Decimal `json:"accrued"`
	Applied   decimal.Decimal `json:"applied"`
	Residual  decimal.Decimal `json:"residual"`
	NextAt    time.Time       `json:"next_at"`
	Batch     *BatchResponse  `json:"batch,omitempty"`
}

// ApplicationFromResult converts an application result to a response.
func ApplicationFromResult(result *usecase.ApplicationResult) ApplicationResponse {
	return ApplicationResponse{
		AccountID: result.AccountID,
		Accrued:   result.Accrued,
		Applied:   result.Applied,
		Residual:  result.Residual,
		NextAt:    result.NextAt,
		Batch:     BatchFromDomain(result.Batch),
	}
}

// ScheduleResponse represents an account's application schedule state.
type ScheduleResponse struct {
	AccountID     string     `json:"account_id"`
	Status        string     `json:"status"`
	NextAt        time.Time  `json:"next_at"`
	LastAppliedAt *time.Time `json:"last_applied_at,omitempty"`
}

// ScheduleFromDomain converts schedule state to a response.
func ScheduleFromDomain(state *domain.ApplicationState) ScheduleResponse {
	return ScheduleResponse{
		AccountID:     state.AccountID,
		Status:        string(state.Status),
		NextAt:        state.NextAt,
		LastAppliedAt: state.LastAppliedAt,
	}
}

// EventResponse represents one outbox event.
type EventResponse struct {
	ID          string         `json:"id"`
	EventType   string         `json:"event_type"`
	AggregateID string         `json:"aggregate_id"`
	Payload     map[string]any `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Published   bool           `json:"published"`
}

// EventsFromDomain converts outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			ID:          e.ID,
			EventType:   e.EventType,
			AggregateID: e.AggregateID,
			Payload:     e.Payload,
			CreatedAt:   e.CreatedAt,
			Published:   e.Published,
		})
	}

	return out
}
