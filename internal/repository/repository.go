package repository

import (
	"context"
	"errors"
	"time"

	"gearhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
}

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetOrCreate returns the owner's cart, creating it on first use.
	GetOrCreate(ctx context.Context, owner model.CartOwner) (*model.Cart, error)

	// Find returns the owner's cart, or nil when none exists.
	Find(ctx context.Context, owner model.CartOwner) (*model.Cart, error)

	// GetLines returns the cart's items joined with their products.
	GetLines(ctx context.Context, cartID uuid.UUID) ([]model.CartLine, error)

	// AddItem inserts a line or increments the quantity of an existing
	// one, and touches the cart's updated timestamp.
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error

	// SetQuantity upserts the line's quantity; a quantity <= 0 removes
	// the line. Returns false when the product was not in the cart.
	SetQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (bool, error)

	// RemoveItem deletes the line. Returns false when no line existed.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error)

	// Clear removes every line from the cart within the transaction.
	Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error

	// Delete removes the cart record and its lines.
	Delete(ctx context.Context, cartID uuid.UUID) error
}

// ShippingMethodRepository defines the interface for shipping method
// lookups.
type ShippingMethodRepository interface {
	// ListActive returns active shipping methods ordered by cost.
	ListActive(ctx context.Context) ([]model.ShippingMethod, error)

	// GetByID returns an active shipping method, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ShippingMethod, error)
}

// OrderRepository defines the interface for order data access. Order
// creation spans several statements, so the service owns the transaction
// and passes it through.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// LockProducts reads the given products with row locks held for the
	// rest of the transaction, serialising concurrent stock checks.
	LockProducts(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error)

	// CreateOrder inserts the order row within the transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateLineItems inserts the order's line items within the
	// transaction.
	CreateLineItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error

	// DecrementStock subtracts quantity from the product's stock within
	// the transaction. Returns false when the guarded update matched no
	// row, meaning the stock check was lost to a concurrent order.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (bool, error)

	// AppendStatusHistory inserts one audit row within the transaction.
	AppendStatusHistory(ctx context.Context, tx pgx.Tx, entry *model.OrderStatusHistory) error

	// GetByNumber retrieves an order and its line items by order number,
	// or nil when absent.
	GetByNumber(ctx context.Context, number string) (*model.Order, []model.OrderLineItem, error)

	// GetByNumberForUpdate reads the order row with a lock held for the
	// rest of the transaction.
	GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*model.Order, error)

	// UpdateStatus writes the order's status and lifecycle timestamps
	// within the transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, shippedAt, deliveredAt *time.Time) error

	// UpdatePaymentStatus writes the payment status and reference.
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus, reference string) error

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// GetStatusHistory returns the order's audit trail, newest first.
	GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, used to retry order-number generation on collision.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
