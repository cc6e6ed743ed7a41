package service

import (
	"context"

	"gearhub/internal/checkout"
	"gearhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines operations for catalogue reads.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// CartService defines operations for cart management.
type CartService interface {
	// Get returns the owner's cart with lines and derived totals,
	// creating the cart on first use.
	Get(ctx context.Context, owner model.CartOwner) (*model.CartView, error)

	// AddItem adds quantity of a product to the cart, incrementing any
	// existing line.
	AddItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID, quantity int) (*model.CartView, error)

	// SetQuantity sets a line's quantity; <= 0 removes the line.
	SetQuantity(ctx context.Context, owner model.CartOwner, productID uuid.UUID, quantity int) (*model.CartView, error)

	// RemoveItem removes a line. The returned flag is false when the
	// product was not in the cart; that case is not an error.
	RemoveItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID) (*model.CartView, bool, error)

	// Merge folds the anonymous session cart into the user's cart and
	// discards the session cart. Called when a session authenticates.
	Merge(ctx context.Context, sessionToken string, userID uuid.UUID) (*model.CartView, error)
}

// ShippingOption is a shipping method with its cost resolved against a
// specific cart total.
type ShippingOption struct {
	Method        model.ShippingMethod `json:"method"`
	EffectiveCost decimal.Decimal      `json:"effectiveCost"`
}

// ReviewSummary is everything the review step shows: the accumulated
// checkout data plus the totals the order will be created with.
type ReviewSummary struct {
	Session         *checkout.Session `json:"session"`
	Cart            *model.CartView   `json:"cart"`
	BillingAddress  model.Address     `json:"billingAddress"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	ShippingCost    decimal.Decimal   `json:"shippingCost"`
	TaxAmount       decimal.Decimal   `json:"taxAmount"`
	DiscountAmount  decimal.Decimal   `json:"discountAmount"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
}

// CheckoutService drives the multi-step checkout session.
type CheckoutService interface {
	// Start begins a checkout for the owner's cart. The cart must be
	// non-empty and every line must be within available stock.
	Start(ctx context.Context, owner model.CartOwner) (*checkout.Session, error)

	// SubmitContact validates and stores the contact step.
	SubmitContact(ctx context.Context, owner model.CartOwner, in checkout.ContactInput) (*checkout.Session, error)

	// SubmitShippingAddress validates and stores the shipping address
	// step.
	SubmitShippingAddress(ctx context.Context, owner model.CartOwner, in checkout.AddressInput) (*checkout.Session, error)

	// SubmitBilling validates and stores the billing step.
	SubmitBilling(ctx context.Context, owner model.CartOwner, in checkout.BillingInput) (*checkout.Session, error)

	// SelectShippingMethod resolves the method's cost against the cart
	// total and snapshots it into the session.
	SelectShippingMethod(ctx context.Context, owner model.CartOwner, methodID uuid.UUID) (*checkout.Session, error)

	// SubmitPayment validates the payment step, discarding sensitive
	// card fields after validation.
	SubmitPayment(ctx context.Context, owner model.CartOwner, in checkout.PaymentInput) (*checkout.Session, error)

	// Review returns the totals the order will be placed with. An
	// optional discount code is validated and applied.
	Review(ctx context.Context, owner model.CartOwner, discountCode string) (*ReviewSummary, error)

	// ListShippingMethods returns active methods with costs resolved
	// for the owner's current cart total.
	ListShippingMethods(ctx context.Context, owner model.CartOwner) ([]ShippingOption, error)

	// Abandon discards the owner's checkout session, leaving the cart
	// untouched.
	Abandon(ctx context.Context, owner model.CartOwner) error
}

// PlaceOrderInput is the payload for the final placement step.
type PlaceOrderInput struct {
	TermsAccepted bool   `json:"termsAccepted"`
	DiscountCode  string `json:"discountCode"`
	Notes         string `json:"notes"`
}

// OrderViewer identifies who is asking for an order. Guests may read
// guest orders when the contact email matches.
type OrderViewer struct {
	UserID *uuid.UUID
	Email  string
}

// OrderResult is a created or fetched order with its line items.
type OrderResult struct {
	Order *model.Order          `json:"order"`
	Items []model.OrderLineItem `json:"items"`
}

// OrderService defines order placement, queries and lifecycle
// transitions.
type OrderService interface {
	// PlaceOrder turns the reviewed checkout session into an order in a
	// single transaction, decrements stock and clears the cart. The
	// confirmation email is dispatched after commit, best-effort.
	PlaceOrder(ctx context.Context, owner model.CartOwner, in PlaceOrderInput) (*OrderResult, error)

	// GetByNumber retrieves an order visible to the viewer. Orders that
	// exist but belong to someone else are reported as not found.
	GetByNumber(ctx context.Context, viewer OrderViewer, number string) (*OrderResult, error)

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// GetStatusHistory returns the audit trail for an order visible to
	// the viewer.
	GetStatusHistory(ctx context.Context, viewer OrderViewer, number string) ([]model.OrderStatusHistory, error)

	// TransitionStatus applies an administrative status change,
	// enforcing the adjacency table and appending one history row.
	TransitionStatus(ctx context.Context, number string, next model.OrderStatus, note string, actor *uuid.UUID) (*model.Order, error)

	// RecordPaymentStatus records the payment collaborator's outcome on
	// the independent payment axis.
	RecordPaymentStatus(ctx context.Context, number string, status model.PaymentStatus, reference string) (*model.Order, error)
}
