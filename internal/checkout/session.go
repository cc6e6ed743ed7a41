// Package checkout models the multi-step checkout session: an ordered
// accumulation of contact, address, shipping and payment data that must be
// complete before an order can be placed.
package checkout

import (
	"time"

	"gearhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Step names one stage of the checkout flow, in order.
type Step string

const (
	StepContact         Step = "contact"
	StepShippingAddress Step = "shipping_address"
	StepBillingAddress  Step = "billing_address"
	StepShippingMethod  Step = "shipping_method"
	StepPayment         Step = "payment"
	StepReview          Step = "review"
)

// steps is the canonical ordering; each step requires all prior steps.
var steps = []Step{
	StepContact,
	StepShippingAddress,
	StepBillingAddress,
	StepShippingMethod,
	StepPayment,
	StepReview,
}

// BillingChoice is a tagged union: either the shipping address is reused,
// or an explicit billing address is present. Never both.
type BillingChoice struct {
	SameAsShipping bool           `json:"sameAsShipping"`
	Address        *model.Address `json:"address,omitempty"`
}

// Resolve returns the effective billing address given the shipping
// address snapshot.
func (b BillingChoice) Resolve(shipping model.Address) model.Address {
	if b.SameAsShipping || b.Address == nil {
		return shipping
	}
	return *b.Address
}

// ShippingSelection snapshots the chosen method so later totals stay
// stable even if the shipping method catalogue changes before placement.
type ShippingSelection struct {
	MethodID      uuid.UUID       `json:"methodId"`
	Name          string          `json:"name"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimatedDays"`
}

// PaymentSelection retains only non-sensitive payment data. Card number
// and CVV are validated in the payment step and discarded; they never
// reach this struct.
type PaymentSelection struct {
	Method    model.PaymentMethod `json:"method"`
	CardLast4 string              `json:"cardLast4,omitempty"`
}

// Session is the server-side checkout state, keyed by the active cart.
// A step's data pointer is nil until that step has been completed.
type Session struct {
	CartID          uuid.UUID          `json:"cartId"`
	UserID          *uuid.UUID         `json:"userId,omitempty"`
	Contact         *model.ContactInfo `json:"contact,omitempty"`
	ShippingAddress *model.Address     `json:"shippingAddress,omitempty"`
	Billing         *BillingChoice     `json:"billing,omitempty"`
	ShippingMethod  *ShippingSelection `json:"shippingMethod,omitempty"`
	Payment         *PaymentSelection  `json:"payment,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// NewSession starts a checkout for the given cart.
func NewSession(cartID uuid.UUID, userID *uuid.UUID) *Session {
	now := time.Now().UTC()
	return &Session{
		CartID:    cartID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// completed reports whether the data for a single step is present.
func (s *Session) completed(step Step) bool {
	switch step {
	case StepContact:
		return s.Contact != nil
	case StepShippingAddress:
		return s.ShippingAddress != nil
	case StepBillingAddress:
		return s.Billing != nil
	case StepShippingMethod:
		return s.ShippingMethod != nil
	case StepPayment:
		return s.Payment != nil
	case StepReview:
		return s.ReadyForReview()
	}
	return false
}

// NextStep returns the earliest step whose data is missing. When every
// step is complete it returns StepReview.
func (s *Session) NextStep() Step {
	for _, step := range steps[:len(steps)-1] {
		if !s.completed(step) {
			return step
		}
	}
	return StepReview
}

// CanEnter reports whether the given step may be visited: all prior
// steps must be complete. Navigating ahead of NextStep is rejected so a
// caller can never skip a stage.
func (s *Session) CanEnter(step Step) bool {
	for _, candidate := range steps {
		if candidate == step {
			return true
		}
		if !s.completed(candidate) {
			return false
		}
	}
	return false
}

// ReadyForReview reports whether every data-collecting step is complete.
func (s *Session) ReadyForReview() bool {
	return s.Contact != nil &&
		s.ShippingAddress != nil &&
		s.Billing != nil &&
		s.ShippingMethod != nil &&
		s.Payment != nil
}

// BillingAddress resolves the billing tagged union against the shipping
// snapshot. Only valid once ReadyForReview is true.
func (s *Session) BillingAddress() model.Address {
	if s.ShippingAddress == nil || s.Billing == nil {
		return model.Address{}
	}
	return s.Billing.Resolve(*s.ShippingAddress)
}

// Touch updates the session's modification timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}
