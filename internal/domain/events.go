package domain

import "time"

// Event types
const (
	EventTypeFeeCharged        = "account.fee_charged"
	EventTypeInterestForfeited = "account.interest_forfeited"
	EventTypeInterestApplied   = "account.interest_applied"
	EventTypeFullyWithdrawn    = "account.fully_withdrawn"
	EventTypeAccountClosed     = "account.closed"
	EventTypeAccountMatured    = "account.matured"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// OutboxEvent represents a notification to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// FeeChargedEvent payload
type FeeChargedEvent struct {
	AccountID    string `json:"account_id"`
	BatchID      string `json:"batch_id"`
	PaymentType  string `json:"payment_type"`
	FeeType      string `json:"fee_type"`
	Amount       string `json:"amount"`
	Denomination string `json:"denomination"`
}

// InterestForfeitedEvent payload
type InterestForfeitedEvent struct {
	AccountID    string `json:"account_id"`
	BatchID      string `json:"batch_id"`
	Amount       string `json:"amount"`
	Denomination string `json:"denomination"`
}

// InterestAppliedEvent payload
type InterestAppliedEvent struct {
	AccountID    string `json:"account_id"`
	Amount       string `json:"amount"`
	Residual     string `json:"residual"`
	Denomination string `json:"denomination"`
	AppliedAt    string `json:"applied_at"`
}

// FullyWithdrawnEvent payload
type FullyWithdrawnEvent struct {
	AccountID    string `json:"account_id"`
	BatchID      string `json:"batch_id"`
	Denomination string `json:"denomination"`
}

// AccountClosedEvent payload
type AccountClosedEvent struct {
	AccountID    string `json:"account_id"`
	Denomination string `json:"denomination"`
	ClosedAt     string `json:"closed_at"`
}

// AccountMaturedEvent payload
type AccountMaturedEvent struct {
	AccountID    string `json:"account_id"`
	Denomination string `json:"denomination"`
	MaturedAt    string `json:"matured_at"`
}
