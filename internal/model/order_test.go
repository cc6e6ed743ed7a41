package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to processing", OrderStatusPending, OrderStatusProcessing, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"pending to shipped skips processing", OrderStatusPending, OrderStatusShipped, false},
		{"pending to delivered", OrderStatusPending, OrderStatusDelivered, false},
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"processing to cancelled", OrderStatusProcessing, OrderStatusCancelled, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, false},
		{"delivered is terminal", OrderStatusDelivered, OrderStatusProcessing, false},
		{"cancelled is terminal", OrderStatusCancelled, OrderStatusPending, false},
		{"delivered to refunded", OrderStatusDelivered, OrderStatusRefunded, true},
		{"cancelled to refunded", OrderStatusCancelled, OrderStatusRefunded, true},
		{"refunded to refunded", OrderStatusRefunded, OrderStatusRefunded, false},
		{"refunded is terminal", OrderStatusRefunded, OrderStatusPending, false},
		{"no self transition", OrderStatusPending, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_CanBeCancelled(t *testing.T) {
	for status, want := range map[OrderStatus]bool{
		OrderStatusPending:    true,
		OrderStatusProcessing: true,
		OrderStatusShipped:    false,
		OrderStatusDelivered:  false,
		OrderStatusCancelled:  false,
		OrderStatusRefunded:   false,
	} {
		o := &Order{Status: status}
		assert.Equal(t, want, o.CanBeCancelled(), "status %s", status)
	}
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusPending))
	assert.True(t, ValidOrderStatus(OrderStatusRefunded))
	assert.False(t, ValidOrderStatus(OrderStatus("backordered")))
}

func TestOrderLineItem_RecomputeTotal(t *testing.T) {
	item := OrderLineItem{
		Quantity:   3,
		UnitPrice:  decimal.RequireFromString("19.99"),
		TotalPrice: decimal.RequireFromString("999.00"), // garbage in, recomputed out
	}
	item.RecomputeTotal()
	assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("59.97")))
}

func TestShippingMethod_CostFor(t *testing.T) {
	threshold := decimal.RequireFromString("100.00")
	method := &ShippingMethod{
		Cost:                  decimal.RequireFromString("9.99"),
		FreeShippingThreshold: &threshold,
	}

	assert.True(t, method.CostFor(decimal.RequireFromString("99.99")).Equal(decimal.RequireFromString("9.99")))
	assert.True(t, method.CostFor(decimal.RequireFromString("100.00")).IsZero())
	assert.True(t, method.CostFor(decimal.RequireFromString("250.00")).IsZero())

	noThreshold := &ShippingMethod{Cost: decimal.RequireFromString("19.99")}
	assert.True(t, noThreshold.CostFor(decimal.RequireFromString("5000.00")).Equal(decimal.RequireFromString("19.99")))
}
