package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an auto part in the catalogue.
type Product struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	SKU           string           `json:"sku" db:"sku"`
	Brand         string           `json:"brand" db:"brand"`
	Description   string           `json:"description,omitempty" db:"description"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	SalePrice     *decimal.Decimal `json:"salePrice,omitempty" db:"sale_price"`
	StockQuantity int              `json:"stockQuantity" db:"stock_quantity"`
	ManageStock   bool             `json:"manageStock" db:"manage_stock"`
	IsActive      bool             `json:"isActive" db:"is_active"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
}

// EffectivePrice returns the sale price when one is set and lower than the
// regular price, otherwise the regular price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

// HasStockFor reports whether the requested quantity is available.
// Products without stock management are always available.
func (p *Product) HasStockFor(quantity int) bool {
	return !p.ManageStock || p.StockQuantity >= quantity
}
