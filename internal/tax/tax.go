// Package tax isolates tax computation behind a policy interface so a
// jurisdiction-aware engine can be wired in without touching the order
// pipeline.
package tax

import (
	"gearhub/internal/model"

	"github.com/shopspring/decimal"
)

// Policy computes the tax amount for an order before placement.
type Policy interface {
	// Amount returns the tax owed for a purchase of the given subtotal
	// and shipping cost delivered to the given address.
	Amount(subtotal, shippingCost decimal.Decimal, shipTo model.Address) decimal.Decimal
}

// ZeroTax charges no tax. It is the default policy.
type ZeroTax struct{}

func (ZeroTax) Amount(_, _ decimal.Decimal, _ model.Address) decimal.Decimal {
	return decimal.Zero
}

// FlatRate taxes the subtotal at a fixed fractional rate, e.g. 0.08.
// Shipping is not taxed.
type FlatRate struct {
	Rate decimal.Decimal
}

func (f FlatRate) Amount(subtotal, _ decimal.Decimal, _ model.Address) decimal.Decimal {
	return subtotal.Mul(f.Rate).Round(2)
}
