package repository

import (
	"context"
	"errors"
	"fmt"

	"gearhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// shippingMethodRepository implements ShippingMethodRepository using
// PostgreSQL.
type shippingMethodRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewShippingMethodRepository creates a new PostgreSQL-backed shipping
// method repository.
func NewShippingMethodRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShippingMethodRepository {
	return &shippingMethodRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shipping_method").Logger(),
	}
}

const shippingMethodColumns = `id, name, description, cost, estimated_days, is_active, free_shipping_threshold`

// ListActive returns active shipping methods ordered by cost.
func (r *shippingMethodRepository) ListActive(ctx context.Context) ([]model.ShippingMethod, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM shipping_methods
		WHERE is_active
		ORDER BY cost
	`, shippingMethodColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query shipping methods")
		return nil, fmt.Errorf("failed to query shipping methods: %w", err)
	}
	defer rows.Close()

	var methods []model.ShippingMethod
	for rows.Next() {
		var m model.ShippingMethod
		err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Cost, &m.EstimatedDays, &m.IsActive, &m.FreeShippingThreshold)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan shipping method row")
			return nil, fmt.Errorf("failed to scan shipping method: %w", err)
		}
		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating shipping method rows")
		return nil, fmt.Errorf("error iterating shipping methods: %w", err)
	}

	return methods, nil
}

// GetByID returns an active shipping method, or nil when absent.
func (r *shippingMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingMethod, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM shipping_methods
		WHERE id = $1 AND is_active
	`, shippingMethodColumns)

	var m model.ShippingMethod
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.Cost, &m.EstimatedDays, &m.IsActive, &m.FreeShippingThreshold,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("method_id", id.String()).Msg("shipping method not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("method_id", id.String()).Msg("failed to query shipping method")
		return nil, fmt.Errorf("failed to query shipping method: %w", err)
	}

	return &m, nil
}
