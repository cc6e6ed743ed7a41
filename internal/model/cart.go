package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartOwner identifies who a cart belongs to: an authenticated user or an
// anonymous session, never both.
type CartOwner struct {
	UserID       *uuid.UUID
	SessionToken string
}

// Anonymous reports whether the owner is an unauthenticated session.
func (o CartOwner) Anonymous() bool {
	return o.UserID == nil
}

// Cart is a pre-purchase collection of product lines.
type Cart struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       *uuid.UUID `json:"userId,omitempty" db:"user_id"`
	SessionToken *string    `json:"-" db:"session_token"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem is one (product, quantity) line in a cart. Unique per
// (cart, product); adding an existing product increments the quantity.
type CartItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartLine pairs a cart item with its product so totals can be derived
// from the live effective price.
type CartLine struct {
	Item    CartItem `json:"item"`
	Product Product  `json:"product"`
}

// UnitPrice returns the live effective price of the line's product.
func (l *CartLine) UnitPrice() decimal.Decimal {
	return l.Product.EffectivePrice()
}

// TotalPrice returns unit price times quantity.
func (l *CartLine) TotalPrice() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}

// CartView is the cart plus its lines and derived totals, as returned to
// callers.
type CartView struct {
	Cart       Cart            `json:"cart"`
	Lines      []CartLine      `json:"lines"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// IsEmpty reports whether the cart has no lines.
func (v *CartView) IsEmpty() bool {
	return len(v.Lines) == 0
}

// ComputeTotals recalculates TotalItems and TotalPrice from the lines.
func (v *CartView) ComputeTotals() {
	v.TotalItems = 0
	v.TotalPrice = decimal.Zero
	for i := range v.Lines {
		v.TotalItems += v.Lines[i].Item.Quantity
		v.TotalPrice = v.TotalPrice.Add(v.Lines[i].TotalPrice())
	}
}
