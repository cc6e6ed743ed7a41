package tax

import (
	"testing"

	"gearhub/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestZeroTax_Amount(t *testing.T) {
	policy := ZeroTax{}

	got := policy.Amount(decimal.RequireFromString("199.99"), decimal.RequireFromString("9.99"), model.Address{})
	assert.True(t, got.IsZero())
}

func TestFlatRate_Amount(t *testing.T) {
	policy := FlatRate{Rate: decimal.RequireFromString("0.08")}

	tests := []struct {
		name     string
		subtotal string
		shipping string
		want     string
	}{
		{name: "whole dollars", subtotal: "100.00", shipping: "9.99", want: "8.00"},
		{name: "rounds half up", subtotal: "10.44", shipping: "0", want: "0.84"},
		{name: "shipping not taxed", subtotal: "0", shipping: "39.99", want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Amount(
				decimal.RequireFromString(tt.subtotal),
				decimal.RequireFromString(tt.shipping),
				model.Address{},
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}
