package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// ProductRepository implements usecase.ProductRepository. Product
// configurations are stored as raw JSON and validated through
// domain.ParseProductConfig on every read, so a bad config row surfaces as a
// configuration error rather than silent fallback. Reads go through the
// cache when one is configured; parsed configs are immutable per row.
type ProductRepository struct {
	pool     *pgxpool.Pool
	cache    usecase.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewProductRepository creates a new ProductRepository. cache may be nil.
func NewProductRepository(pool *pgxpool.Pool, cache usecase.Cache, cacheTTL time.Duration, logger zerolog.Logger) *ProductRepository {
	return &ProductRepository{
		pool:     pool,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetByID retrieves and parses a product configuration by ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.ProductConfig, error) {
	if raw, ok := r.fromCache(ctx, id); ok {
		return domain.ParseProductConfig(raw)
	}

	var configJSON []byte
	err := r.pool.QueryRow(ctx, `SELECT config FROM products WHERE id = $1`, id).Scan(&configJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}

		return nil, err
	}

	var raw domain.RawProductConfig
	if err := json.Unmarshal(configJSON, &raw); err != nil {
		return nil, domain.NewConfigurationError("product %s: malformed config: %v", id, err)
	}

	r.toCache(ctx, id, configJSON)

	return domain.ParseProductConfig(raw)
}

// Create stores a product configuration, validating it first.
func (r *ProductRepository) Create(ctx context.Context, raw domain.RawProductConfig) error {
	if _, err := domain.ParseProductConfig(raw); err != nil {
		return err
	}

	configJSON, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO products (id, config, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config`,
		raw.ID, configJSON,
	)
	if err != nil {
		return err
	}

	if r.cache != nil {
		if err := r.cache.Delete(ctx, productCacheKey(raw.ID)); err != nil {
			r.logger.Warn().Err(err).Str("product_id", raw.ID).Msg("failed to invalidate product cache")
		}
	}

	return nil
}

func (r *ProductRepository) fromCache(ctx context.Context, id string) (domain.RawProductConfig, bool) {
	if r.cache == nil {
		return domain.RawProductConfig{}, false
	}

	cached, err := r.cache.Get(ctx, productCacheKey(id))
	if err != nil || cached == "" {
		return domain.RawProductConfig{}, false
	}

	var raw domain.RawProductConfig
	if err := json.Unmarshal([]byte(cached), &raw); err != nil {
		return domain.RawProductConfig{}, false
	}

	return raw, true
}

func (r *ProductRepository) toCache(ctx context.Context, id string, configJSON []byte) {
	if r.cache == nil {
		return
	}

	if err := r.cache.Set(ctx, productCacheKey(id), string(configJSON), r.cacheTTL); err != nil {
		r.logger.Warn().Err(err).Str("product_id", id).Msg("failed to cache product config")
	}
}

func productCacheKey(id string) string {
	return "product:" + id
}
