package discount

import (
	"context"
	"fmt"
	"strings"

	"gearhub/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// validator implements Validator over an in-memory table. The table is
// read-only after initialisation, so no locking is needed.
type validator struct {
	table  Table
	logger zerolog.Logger
}

// NewValidator loads the discount table at the given path and returns a
// Validator for it. An empty path yields a validator that rejects every
// code.
func NewValidator(ctx context.Context, loader Loader, path string, logger zerolog.Logger) (Validator, error) {
	logger = logger.With().Str("component", "discount-validator").Logger()

	if path == "" {
		logger.Info().Msg("no discount file configured, all codes will be rejected")
		return &validator{table: Table{}, logger: logger}, nil
	}

	table, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise discount validator: %w", err)
	}

	logger.Info().Int("code_count", len(table)).Msg("discount validator initialised")

	return &validator{table: table, logger: logger}, nil
}

// Validate returns the discount amount for the code, matching
// case-insensitively.
func (v *validator) Validate(ctx context.Context, code string) (decimal.Decimal, error) {
	normalised := strings.ToUpper(strings.TrimSpace(code))
	if normalised == "" {
		return decimal.Zero, model.ErrInvalidDiscountCode
	}

	amount, ok := v.table.Amount(normalised)
	if !ok {
		v.logger.Debug().Str("code", normalised).Msg("unknown discount code")
		return decimal.Zero, model.ErrInvalidDiscountCode
	}

	return amount, nil
}
