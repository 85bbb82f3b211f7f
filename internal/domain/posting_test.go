package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPostingBatch_Validate(t *testing.T) {
	tests := []struct {
		name        string
		postings    []Posting
		expectError bool
	}{
		{
			name: "balanced pair",
			postings: []Posting{
				{AccountID: "acc-1", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(100)},
				{AccountID: "internal", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(-100)},
			},
			expectError: false,
		},
		{
			name: "unbalanced",
			postings: []Posting{
				{AccountID: "acc-1", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(100)},
				{AccountID: "internal", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(-99)},
			},
			expectError: true,
		},
		{
			name: "balanced per denomination",
			postings: []Posting{
				{AccountID: "acc-1", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(50)},
				{AccountID: "internal", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(-50)},
				{AccountID: "acc-1", Address: AddressDefault, Denomination: "GBP", Phase: PhaseCommitted, Amount: decimal.NewFromInt(10)},
				{AccountID: "internal", Address: AddressDefault, Denomination: "GBP", Phase: PhaseCommitted, Amount: decimal.NewFromInt(-10)},
			},
			expectError: false,
		},
		{
			name: "cross denomination imbalance",
			postings: []Posting{
				{AccountID: "acc-1", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(50)},
				{AccountID: "internal", Address: AddressDefault, Denomination: "GBP", Phase: PhaseCommitted, Amount: decimal.NewFromInt(-50)},
			},
			expectError: true,
		},
		{
			name:        "empty batch",
			postings:    nil,
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := &PostingBatch{Postings: tt.postings}

			err := batch.Validate()

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPostingBatch_NetMovement(t *testing.T) {
	batch := &PostingBatch{
		Postings: []Posting{
			{AccountID: "acc-1", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(-75)},
			{AccountID: "acc-1", Address: AddressEarlyWithdrawalsTracker, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(75)},
			{AccountID: "other", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(75)},
		},
	}

	net := batch.NetMovement("acc-1", "USD")
	if !net.Equal(decimal.NewFromInt(-75)) {
		t.Errorf("NetMovement() = %s, want -75", net)
	}

	if got := batch.NetMovement("acc-1", "GBP"); !got.IsZero() {
		t.Errorf("NetMovement() for unused denomination = %s, want 0", got)
	}
}

func TestPostingBatch_ForceOverride(t *testing.T) {
	batch := &PostingBatch{Details: map[string]string{DetailForceOverride: "true"}}
	if !batch.ForceOverride() {
		t.Error("expected force override")
	}

	batch = &PostingBatch{}
	if batch.ForceOverride() {
		t.Error("unexpected force override on empty details")
	}
}

func TestBalances_ApplyBatch(t *testing.T) {
	balances := Balances{
		{Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted}: decimal.NewFromInt(500),
	}

	batch := &PostingBatch{
		Postings: []Posting{
			{AccountID: "acc-1", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(200)},
			{AccountID: "internal", Address: AddressDefault, Denomination: "USD", Phase: PhaseCommitted, Amount: decimal.NewFromInt(-200)},
		},
	}

	next := balances.ApplyBatch(batch, "acc-1")

	if got := next.Available("USD"); !got.Equal(decimal.NewFromInt(700)) {
		t.Errorf("Available() = %s, want 700", got)
	}

	// receiver untouched
	if got := balances.Available("USD"); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("original Available() = %s, want 500", got)
	}

	// other account's movement not applied
	if got := next.Committed(AddressDefault, "USD"); !got.Equal(decimal.NewFromInt(700)) {
		t.Errorf("Committed() = %s, want 700", got)
	}
}
