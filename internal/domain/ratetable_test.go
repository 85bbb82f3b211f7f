package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustRateTable(t *testing.T, raw map[string][]RawRateBand) *RateTable {
	t.Helper()

	table, err := ParseRateTable(raw)
	if err != nil {
		t.Fatalf("ParseRateTable() error: %v", err)
	}

	return table
}

func TestParseRateTable(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string][]RawRateBand
		expectError bool
	}{
		{
			name: "valid table",
			raw: map[string][]RawRateBand{
				"STANDARD": {{Minimum: "0", Rate: "0.01"}, {Minimum: "1000", Rate: "0.02"}},
			},
			expectError: false,
		},
		{
			name:        "tier with no bands",
			raw:         map[string][]RawRateBand{"STANDARD": {}},
			expectError: true,
		},
		{
			name:        "bad minimum",
			raw:         map[string][]RawRateBand{"STANDARD": {{Minimum: "abc", Rate: "0.01"}}},
			expectError: true,
		},
		{
			name:        "bad rate",
			raw:         map[string][]RawRateBand{"STANDARD": {{Minimum: "0", Rate: ""}}},
			expectError: true,
		},
		{
			name: "duplicate minimum",
			raw: map[string][]RawRateBand{
				"STANDARD": {{Minimum: "100", Rate: "0.01"}, {Minimum: "100", Rate: "0.02"}},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRateTable(tt.raw)

			if tt.expectError && !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRateTable_Resolve(t *testing.T) {
	table := mustRateTable(t, map[string][]RawRateBand{
		"STANDARD": {
			{Minimum: "5000", Rate: "0.02"},
			{Minimum: "100", Rate: "0.01"},
			{Minimum: "20000", Rate: "0.015"}, // tables need not be monotonic
		},
	})

	tests := []struct {
		name    string
		tier    string
		balance string
		want    string
		wantErr bool
	}{
		{name: "below lowest band", tier: "STANDARD", balance: "99", want: "0"},
		{name: "exactly lowest band", tier: "STANDARD", balance: "100", want: "0.01"},
		{name: "between bands", tier: "STANDARD", balance: "4999.99", want: "0.01"},
		{name: "greatest band at or below", tier: "STANDARD", balance: "19999", want: "0.02"},
		{name: "non monotonic top band", tier: "STANDARD", balance: "50000", want: "0.015"},
		{name: "unknown tier", tier: "standard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, _ := decimal.NewFromString(tt.balance)

			got, err := table.Resolve(tt.tier, balance)

			if tt.wantErr {
				if !errors.Is(err, ErrConfiguration) {
					t.Fatalf("expected configuration error, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("Resolve(%s, %s) = %s, want %s", tt.tier, tt.balance, got, want)
			}
		})
	}
}

func TestRateTable_ResolveDeterministic(t *testing.T) {
	table := mustRateTable(t, map[string][]RawRateBand{
		"PLUS": {{Minimum: "0", Rate: "0.031"}, {Minimum: "750", Rate: "0.027"}},
	})

	balance := decimal.NewFromInt(750)

	first, err := table.Resolve("PLUS", balance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := table.Resolve("PLUS", balance)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("Resolve() not deterministic: %s != %s", again, first)
		}
	}
}

func TestRateSchedule_TableAt(t *testing.T) {
	old := mustRateTable(t, map[string][]RawRateBand{"STANDARD": {{Minimum: "0", Rate: "0.01"}}})
	current := mustRateTable(t, map[string][]RawRateBand{"STANDARD": {{Minimum: "0", Rate: "0.02"}}})

	cutover := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	schedule := RateSchedule{
		{To: cutover, Table: old},
		{From: cutover, Table: current},
	}

	table, err := schedule.TableAt(cutover.Add(-time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table != old {
		t.Error("expected the pre-cutover table")
	}

	table, err = schedule.TableAt(cutover)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table != current {
		t.Error("expected the post-cutover table")
	}
}

func TestRateSchedule_TableAtNoneValid(t *testing.T) {
	table := mustRateTable(t, map[string][]RawRateBand{"STANDARD": {{Minimum: "0", Rate: "0.01"}}})

	schedule := RateSchedule{
		{To: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Table: table},
	}

	_, err := schedule.TableAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
