package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// OpenAccountRequest represents a request to open a deposit account.
type OpenAccountRequest struct {
	ProductID string            `json:"product_id"`
	Flags     []TierFlagRequest `json:"flags,omitempty"`
}

// TierFlagRequest represents a customer tier flag with its activation window.
type TierFlagRequest struct {
	Name        string     `json:"name"`
	ActivatedAt time.Time  `json:"activated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	flags := make([]domain.TierFlag, 0, len(r.Flags))
	for _, f := range r.Flags {
		flag := domain.TierFlag{Name: f.Name, ActivatedAt: f.ActivatedAt}
		if f.ExpiresAt != nil {
			flag.ExpiresAt = *f.ExpiresAt
		}
		flags = append(flags, flag)
	}

	return usecase.OpenAccountInput{
		ProductID: r.ProductID,
		Flags:     flags,
	}
}

// SubmitBatchRequest represents a posting batch submission.
type SubmitBatchRequest struct {
	ClientTransactionID string            `json:"client_transaction_id"`
	ValueDate           *time.Time        `json:"value_date,omitempty"`
	Details             map[string]string `json:"details,omitempty"`
	Postings            []PostingItem     `json:"postings"`
}

// PostingItem represents a single movement in a batch.
type PostingItem struct {
	AccountID    string          `json:"account_id"`
	Address      string          `json:"address"`
	Denomination string          `json:"denomination"`
	Phase        string          `json:"phase,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input. An omitted phase defaults to
// committed, and an omitted address defaults to the available balance.
func (r *SubmitBatchRequest) ToUseCaseInput(accountID string) usecase.SubmitBatchInput {
	postings := make([]domain.Posting, 0, len(r.Postings))
	for _, p := range r.Postings {
		posting := domain.Posting{
			AccountID:    p.AccountID,
			Address:      domain.Address(p.Address),
			Denomination: p.Denomination,
			Phase:        domain.Phase(p.Phase),
			Amount:       p.Amount,
		}
		if posting.AccountID == "" {
			posting.AccountID = accountID
		}
		if posting.Address == "" {
			posting.Address = domain.AddressDefault
		}
		if posting.Phase == "" {
			posting.Phase = domain.PhaseCommitted
		}
		postings = append(postings, posting)
	}

	return usecase.SubmitBatchInput{
		AccountID:           accountID,
		ClientTransactionID: r.ClientTransactionID,
		ValueDate:           r.ValueDate,
		Details:             r.Details,
		Postings:            postings,
	}
}

// RunAccrualRequest represents a request to run one day's accrual.
type RunAccrualRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

// RunApplicationRequest represents a request to run a due application.
type RunApplicationRequest struct {
	At *time.Time `json:"at,omitempty"`
}

// ChangeScheduleRequest represents a schedule parameter change.
type ChangeScheduleRequest struct {
	Frequency     string    `json:"frequency"`
	DayOfMonth    int       `json:"day_of_month,omitempty"`
	Hour          int       `json:"hour,omitempty"`
	Minute        int       `json:"minute,omitempty"`
	Second        int       `json:"second,omitempty"`
	EffectiveFrom time.Time `json:"effective_from"`
}

// ToSchedule converts to the domain schedule shape.
func (r *ChangeScheduleRequest) ToSchedule() domain.ApplicationSchedule {
	return domain.ApplicationSchedule{
		Frequency:  domain.Frequency(r.Frequency),
		DayOfMonth: r.DayOfMonth,
		Hour:       r.Hour,
		Minute:     r.Minute,
		Second:     r.Second,
	}
}
