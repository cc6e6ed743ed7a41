// Package discount validates order discount codes against a code table
// loaded at startup from S3 or the local file system.
package discount

import (
	"context"

	"github.com/shopspring/decimal"
)

// Table maps discount codes to the amount they take off an order total.
type Table map[string]decimal.Decimal

// Amount returns the discount for a code and whether the code exists.
func (t Table) Amount(code string) (decimal.Decimal, bool) {
	amount, ok := t[code]
	return amount, ok
}

// Loader loads a discount table from a named source.
type Loader interface {
	// Load reads the discount file at the given path or key.
	Load(ctx context.Context, path string) (Table, error)
}

// Validator answers whether a discount code is redeemable and for how
// much.
type Validator interface {
	// Validate returns the discount amount for the code. Unknown codes
	// return model.ErrInvalidDiscountCode.
	Validate(ctx context.Context, code string) (decimal.Decimal, error)
}
