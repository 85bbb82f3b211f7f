package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/depositcore/internal/domain"
)

func TestRunDailyAccrual(t *testing.T) {
	t.Run("accrues one day of interest on the prior EOD balance", func(t *testing.T) {
		f := newFixture(t, nil)
		f.submit(t, "1000", nil, testTime.AddDate(0, 0, -2))

		result, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime)
		if err != nil {
			t.Fatalf("RunDailyAccrual: %v", err)
		}

		// 1000 at 14.9% over a 365 day year.
		if got := result.Accrued.String(); got != "0.40822" {
			t.Errorf("accrued = %s, want 0.40822", got)
		}
		if result.Batch == nil {
			t.Fatal("expected an accrual batch")
		}
		if err := result.Batch.Validate(); err != nil {
			t.Errorf("accrual batch does not balance: %v", err)
		}

		balances := f.balances(t, testTime)
		if got := balances.AccruedPayable("USD").String(); got != "0.40822" {
			t.Errorf("accrued payable = %s, want 0.40822", got)
		}
		// Accrual never touches the available balance.
		if got := balances.Available("USD").String(); got != "1000" {
			t.Errorf("available = %s, want 1000", got)
		}
	})

	t.Run("intraday deposits do not change what the day earns", func(t *testing.T) {
		f := newFixture(t, nil)
		f.submit(t, "1000", nil, testTime.AddDate(0, 0, -2))
		f.submit(t, "100000", nil, testTime.Add(-1*time.Hour))

		result, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime)
		if err != nil {
			t.Fatalf("RunDailyAccrual: %v", err)
		}
		if got := result.Accrued.String(); got != "0.40822" {
			t.Errorf("accrued = %s, want 0.40822", got)
		}
	})

	t.Run("a midnight-dated deposit belongs to its own day", func(t *testing.T) {
		f := newFixture(t, nil)
		day := domain.DateOf(testTime)
		f.submit(t, "1000", nil, day)

		result, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime)
		if err != nil {
			t.Fatalf("RunDailyAccrual: %v", err)
		}
		if !result.Accrued.IsZero() {
			t.Errorf("accrued = %s, want 0: the deposit is day-of activity, not prior EOD", result.Accrued)
		}

		next, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("next day: %v", err)
		}
		if got := next.Accrued.String(); got != "0.40822" {
			t.Errorf("next day accrued = %s, want 0.40822", got)
		}
	})

	t.Run("zero balance accrues nothing and commits nothing", func(t *testing.T) {
		f := newFixture(t, nil)

		result, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime)
		if err != nil {
			t.Fatalf("RunDailyAccrual: %v", err)
		}
		if !result.Accrued.IsZero() {
			t.Errorf("accrued = %s, want 0", result.Accrued)
		}
		if result.Batch != nil {
			t.Error("zero accrual still produced a batch")
		}
	})

	t.Run("replay produces identical client transaction IDs", func(t *testing.T) {
		f := newFixture(t, nil)
		f.submit(t, "1000", nil, testTime.AddDate(0, 0, -2))

		first, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime)
		if err != nil {
			t.Fatalf("first run: %v", err)
		}
		second, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("second run: %v", err)
		}

		if first.Batch.ClientTransactionID != second.Batch.ClientTransactionID {
			t.Errorf("replay changed the client transaction ID: %s vs %s",
				first.Batch.ClientTransactionID, second.Batch.ClientTransactionID)
		}
	})

	t.Run("closed account accrues nothing", func(t *testing.T) {
		f := newFixture(t, nil)
		closed := testTime.AddDate(0, 0, -1)
		f.account.ClosedAt = &closed

		_, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime)
		if !errors.Is(err, domain.ErrAccountClosed) {
			t.Errorf("err = %v, want ErrAccountClosed", err)
		}
	})

	t.Run("tiered rate follows the account flag", func(t *testing.T) {
		f := newFixture(t, func(raw *domain.RawProductConfig) {
			raw.TierPriority = []string{"PREMIUM"}
			raw.Rates[0].Curves["PREMIUM"] = []domain.RawRateBand{
				{Minimum: "0", Rate: "0.2"},
			}
		})
		f.account.Flags = []domain.TierFlag{{Name: "PREMIUM", ActivatedAt: testTime.AddDate(0, -6, 0)}}
		f.submit(t, "1000", nil, testTime.AddDate(0, 0, -2))

		result, err := f.accrualUC.RunDailyAccrual(context.Background(), f.account.ID, testTime)
		if err != nil {
			t.Fatalf("RunDailyAccrual: %v", err)
		}
		if result.Tier != "PREMIUM" {
			t.Errorf("tier = %s, want PREMIUM", result.Tier)
		}
		// 1000 * 0.2 / 365 rounds to 0.54795.
		if got := result.Accrued.String(); got != "0.54795" {
			t.Errorf("accrued = %s, want 0.54795", got)
		}
	})
}
