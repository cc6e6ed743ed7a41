package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment axis of an order's lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus is the payment axis, independent of OrderStatus.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod identifies how the customer chose to pay.
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPayPal,
		PaymentMethodCashOnDelivery, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// orderTransitions is the adjacency table for status changes. Refunded is
// reachable from any state and is therefore handled in CanTransitionTo.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok || s == OrderStatusRefunded
}

// CanTransitionTo reports whether the status change from s to next is
// permitted.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if next == OrderStatusRefunded {
		return s != OrderStatusRefunded
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is an immutable record of a completed purchase. Only status,
// payment status and the lifecycle timestamps change after creation.
type Order struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OrderNumber string     `json:"orderNumber" db:"order_number"`
	UserID      *uuid.UUID `json:"userId,omitempty" db:"user_id"`

	Status           OrderStatus   `json:"status" db:"status"`
	PaymentStatus    PaymentStatus `json:"paymentStatus" db:"payment_status"`
	PaymentMethod    PaymentMethod `json:"paymentMethod" db:"payment_method"`
	PaymentReference string        `json:"paymentReference,omitempty" db:"payment_reference"`

	Contact         ContactInfo `json:"contact"`
	ShippingAddress Address     `json:"shippingAddress"`
	BillingAddress  Address     `json:"billingAddress"`

	ShippingMethodName string `json:"shippingMethodName" db:"shipping_method_name"`

	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shippingCost" db:"shipping_cost"`
	TaxAmount      decimal.Decimal `json:"taxAmount" db:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"totalAmount" db:"total_amount"`

	Notes string `json:"notes,omitempty" db:"notes"`

	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty" db:"shipped_at"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty" db:"delivered_at"`
}

// CanBeCancelled reports whether the order may still be cancelled.
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}

// OrderLineItem is a snapshot of one purchased product. Name, SKU, brand
// and unit price are copied at purchase time so later catalogue edits do
// not rewrite history. TotalPrice is always recomputed, never trusted
// from input.
type OrderLineItem struct {
	ID           uuid.UUID       `json:"-" db:"id"`
	OrderID      uuid.UUID       `json:"-" db:"order_id"`
	ProductID    uuid.UUID       `json:"productId" db:"product_id"`
	ProductName  string          `json:"productName" db:"product_name"`
	ProductSKU   string          `json:"productSku" db:"product_sku"`
	ProductBrand string          `json:"productBrand" db:"product_brand"`
	Quantity     int             `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice" db:"unit_price"`
	TotalPrice   decimal.Decimal `json:"totalPrice" db:"total_price"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// RecomputeTotal sets TotalPrice to unit price times quantity.
func (i *OrderLineItem) RecomputeTotal() {
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatusHistory is one append-only audit entry for a status change.
type OrderStatusHistory struct {
	ID        uuid.UUID   `json:"-" db:"id"`
	OrderID   uuid.UUID   `json:"-" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	Note      string      `json:"note,omitempty" db:"note"`
	CreatedBy *uuid.UUID  `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// ShippingMethod is a deliverable shipping option.
type ShippingMethod struct {
	ID                    uuid.UUID        `json:"id" db:"id"`
	Name                  string           `json:"name" db:"name"`
	Description           string           `json:"description,omitempty" db:"description"`
	Cost                  decimal.Decimal  `json:"cost" db:"cost"`
	EstimatedDays         int              `json:"estimatedDays" db:"estimated_days"`
	IsActive              bool             `json:"isActive" db:"is_active"`
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold,omitempty" db:"free_shipping_threshold"`
}

// CostFor returns the shipping cost for the given order total, applying
// the free-shipping threshold when one is configured.
func (m *ShippingMethod) CostFor(orderTotal decimal.Decimal) decimal.Decimal {
	if m.FreeShippingThreshold != nil && orderTotal.GreaterThanOrEqual(*m.FreeShippingThreshold) {
		return decimal.Zero
	}
	return m.Cost
}
