package model

import (
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidation          = "VALIDATION_FAILED"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeCartEmpty           = "CART_EMPTY"
	ErrCodeItemNotFound        = "CART_ITEM_NOT_FOUND"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeCheckoutIncomplete  = "CHECKOUT_INCOMPLETE"
	ErrCodeNoCheckoutSession   = "NO_CHECKOUT_SESSION"
	ErrCodeTermsNotAccepted    = "TERMS_NOT_ACCEPTED"
	ErrCodeInvalidDiscountCode = "INVALID_DISCOUNT_CODE"
	ErrCodeShippingMethod      = "SHIPPING_METHOD_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	ErrCodeOrderPlacement      = "ORDER_PLACEMENT_FAILED"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError carries a machine-readable code alongside the message so
// handlers can map business failures to HTTP statuses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrCartEmpty           = NewDomainError(ErrCodeCartEmpty, "Cart is empty")
	ErrCartItemNotFound    = NewDomainError(ErrCodeItemNotFound, "Product is not in the cart")
	ErrNoCheckoutSession   = NewDomainError(ErrCodeNoCheckoutSession, "No active checkout session")
	ErrTermsNotAccepted    = NewDomainError(ErrCodeTermsNotAccepted, "Terms and conditions must be accepted")
	ErrInvalidDiscountCode = NewDomainError(ErrCodeInvalidDiscountCode, "Discount code is not valid")
	ErrShippingMethod      = NewDomainError(ErrCodeShippingMethod, "Selected shipping method is not available")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOrderPlacement      = NewDomainError(ErrCodeOrderPlacement, "There was an error processing your order. Please try again.")
	ErrUnauthorised        = NewDomainError(ErrCodeUnauthorised, "Not authorised")
)

// StockShortage describes one cart line whose requested quantity exceeds
// the available stock.
type StockShortage struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// InsufficientStockError reports every offending product so the customer
// sees an itemized message, not just the first failure.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		parts[i] = fmt.Sprintf("only %d units of %s are available", s.Available, s.ProductName)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// ValidationError carries field-level validation failures for one
// checkout step.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// CheckoutIncompleteError redirects the caller to the earliest incomplete
// checkout step.
type CheckoutIncompleteError struct {
	NextStep string
}

func (e *CheckoutIncompleteError) Error() string {
	return "checkout step incomplete, next step: " + e.NextStep
}

// InvalidTransitionError reports a rejected order status change.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
