package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/adapter/http/dto"
	"github.com/iho/depositcore/tests/testutil"
)

func postJSON(t *testing.T, server *testServer, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	r := httptest.NewRequest(http.MethodPost, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	server.Router.ServeHTTP(w, r)
	return w
}

func getSchedule(t *testing.T, server *testServer, accountID string) dto.ScheduleResponse {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+accountID+"/schedule", nil)
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp dto.ScheduleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse schedule: %v", err)
	}
	return resp
}

func TestInterestFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	server := newTestServer(t, testDB)
	defer server.Close()

	testDB.SeedProduct(ctx, testutil.DefaultProduct("savings-std"))
	accountID := openTestAccount(t, server, "savings-std")

	deposit := submitBatch(t, server, accountID, depositRequest(testutil.GenerateID(), "1000"))
	if deposit.Code != http.StatusCreated {
		t.Fatalf("failed to seed balance: %d %s", deposit.Code, deposit.Body.String())
	}

	// Accrue against end-of-day balances, so run as of the day after the
	// deposit's value date.
	accrualAsOf := time.Now().UTC().Add(24 * time.Hour)

	t.Run("daily accrual credits the accrual address", func(t *testing.T) {
		w := postJSON(t, server, "/api/v1/accounts/"+accountID+"/accruals", dto.RunAccrualRequest{AsOf: &accrualAsOf})

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.AccrualResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Tier != "STANDARD" {
			t.Errorf("expected tier STANDARD, got %s", resp.Tier)
		}
		if !resp.Rate.Equal(decimal.RequireFromString("0.02")) {
			t.Errorf("expected rate 0.02, got %s", resp.Rate)
		}
		// 1000 * 0.02 / 365 at accrual precision 5.
		if !resp.Accrued.Equal(decimal.RequireFromString("0.05479")) {
			t.Errorf("expected accrued 0.05479, got %s", resp.Accrued)
		}
		if resp.Batch == nil {
			t.Error("expected an accrual batch")
		}
	})

	t.Run("accrual rerun for the same day is a duplicate", func(t *testing.T) {
		w := postJSON(t, server, "/api/v1/accounts/"+accountID+"/accruals", dto.RunAccrualRequest{AsOf: &accrualAsOf})

		if w.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d: %s", http.StatusConflict, w.Code, w.Body.String())
		}
	})

	t.Run("schedule starts out waiting", func(t *testing.T) {
		schedule := getSchedule(t, server, accountID)

		if schedule.Status != "WAITING" {
			t.Errorf("expected status WAITING, got %s", schedule.Status)
		}
		if schedule.NextAt.IsZero() {
			t.Error("expected a next occurrence")
		}
	})

	t.Run("application before the next occurrence is rejected", func(t *testing.T) {
		now := time.Now().UTC()
		w := postJSON(t, server, "/api/v1/accounts/"+accountID+"/applications", dto.RunApplicationRequest{At: &now})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, w.Code, w.Body.String())
		}
	})

	t.Run("application moves rounded interest to the available balance", func(t *testing.T) {
		nextAt := getSchedule(t, server, accountID).NextAt

		// Run once the occurrence has arrived and the accrual posting is
		// safely value-dated in the past.
		at := nextAt
		if earliest := accrualAsOf.Add(48 * time.Hour); at.Before(earliest) {
			at = earliest
		}
		w := postJSON(t, server, "/api/v1/accounts/"+accountID+"/applications", dto.RunApplicationRequest{At: &at})

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ApplicationResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !resp.Accrued.Equal(decimal.RequireFromString("0.05479")) {
			t.Errorf("expected accrued 0.05479, got %s", resp.Accrued)
		}
		if !resp.Applied.Equal(decimal.RequireFromString("0.05")) {
			t.Errorf("expected applied 0.05, got %s", resp.Applied)
		}
		if !resp.Residual.Equal(decimal.RequireFromString("0.00479")) {
			t.Errorf("expected residual 0.00479, got %s", resp.Residual)
		}
		if !resp.NextAt.After(nextAt) {
			t.Errorf("expected next occurrence after %s, got %s", nextAt, resp.NextAt)
		}

		if got := getSchedule(t, server, accountID).Status; got != "WAITING" {
			t.Errorf("expected schedule back to WAITING, got %s", got)
		}

		// The accrual address zeroes out: the residual is swept to the
		// product's internal account, not left accrued.
		r := httptest.NewRequest(http.MethodGet,
			"/api/v1/accounts/"+accountID+"/balances?at="+at.Add(time.Hour).Format(time.RFC3339), nil)
		bw := httptest.NewRecorder()
		server.Router.ServeHTTP(bw, r)
		if bw.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, bw.Code, bw.Body.String())
		}

		var balances dto.BalancesResponse
		if err := json.Unmarshal(bw.Body.Bytes(), &balances); err != nil {
			t.Fatalf("failed to parse balances: %v", err)
		}
		for _, line := range balances.Balances {
			if line.Address == "ACCRUED_PAYABLE" && !line.Amount.IsZero() {
				t.Errorf("accrued payable = %s after application, want 0", line.Amount)
			}
			if line.Address == "DEFAULT" && !line.Amount.Equal(decimal.RequireFromString("1000.05")) {
				t.Errorf("available = %s, want 1000.05", line.Amount)
			}
		}
	})

	t.Run("schedule change takes effect from a future date", func(t *testing.T) {
		effectiveFrom := time.Now().UTC().Add(45 * 24 * time.Hour)
		body, _ := json.Marshal(dto.ChangeScheduleRequest{
			Frequency:     "MONTHLY",
			DayOfMonth:    15,
			EffectiveFrom: effectiveFrom,
		})
		r := httptest.NewRequest(http.MethodPut, "/api/v1/accounts/"+accountID+"/schedule", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		server.Router.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var resp dto.ScheduleResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.NextAt.Day() != 15 {
			t.Errorf("expected next occurrence on the 15th, got %s", resp.NextAt)
		}
		if !resp.NextAt.After(effectiveFrom) {
			t.Errorf("expected next occurrence after %s, got %s", effectiveFrom, resp.NextAt)
		}
	})
}
