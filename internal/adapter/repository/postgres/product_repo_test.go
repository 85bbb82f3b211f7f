package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase/mocks"
)

func rawTestProduct(id string) domain.RawProductConfig {
	return domain.RawProductConfig{
		ID:           id,
		Denomination: "USD",
		TierPriority: []string{"STANDARD"},
		TierDefault:  "STANDARD",
		Rates: []domain.RawTimedRateTable{
			{
				Curves: map[string][]domain.RawRateBand{
					"STANDARD": {{Minimum: "0", Rate: "0.03"}},
				},
			},
		},
		InternalAccountID: "1",
	}
}

func TestProductRepositoryCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)

	raw := rawTestProduct("savings-01")
	configJSON, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "product:savings-01").Return(string(configJSON), nil)

	// nil pool: a cache hit must never reach the database
	repo := NewProductRepository(nil, cache, time.Minute, zerolog.Nop())

	cfg, err := repo.GetByID(context.Background(), "savings-01")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if cfg.Denomination != "USD" {
		t.Errorf("expected denomination USD, got %s", cfg.Denomination)
	}

	if cfg.Accrual.InternalAccountID != "1" {
		t.Errorf("expected internal account 1, got %s", cfg.Accrual.InternalAccountID)
	}
}

func TestProductRepositoryCacheHitInvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)

	raw := rawTestProduct("savings-02")
	raw.InternalAccountID = ""
	configJSON, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "product:savings-02").Return(string(configJSON), nil)

	repo := NewProductRepository(nil, cache, time.Minute, zerolog.Nop())

	_, err = repo.GetByID(context.Background(), "savings-02")
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestProductRepositoryCreateRejectsInvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)

	raw := rawTestProduct("savings-03")
	raw.Denomination = ""

	// validation fails before any pool or cache access
	cache := mocks.NewMockCache(ctrl)
	repo := NewProductRepository(nil, cache, time.Minute, zerolog.Nop())

	if err := repo.Create(context.Background(), raw); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
