package service

import (
	"context"
	"fmt"

	"gearhub/internal/checkout"
	"gearhub/internal/discount"
	"gearhub/internal/model"
	"gearhub/internal/repository"
	"gearhub/internal/tax"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	cartRepo     repository.CartRepository
	shippingRepo repository.ShippingMethodRepository
	store        checkout.Store
	discounts    discount.Validator
	taxPolicy    tax.Policy
	logger       zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	shippingRepo repository.ShippingMethodRepository,
	store checkout.Store,
	discounts discount.Validator,
	taxPolicy tax.Policy,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		cartRepo:     cartRepo,
		shippingRepo: shippingRepo,
		store:        store,
		discounts:    discounts,
		taxPolicy:    taxPolicy,
		logger:       logger.With().Str("service", "checkout").Logger(),
	}
}

// cartView loads the owner's cart with lines, or ErrCartEmpty when the
// owner has no cart at all.
func (s *checkoutService) cartView(ctx context.Context, owner model.CartOwner) (*model.CartView, error) {
	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrCartEmpty
	}

	lines, err := s.cartRepo.GetLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}

	v := &model.CartView{Cart: *cart, Lines: lines}
	v.ComputeTotals()
	return v, nil
}

// checkStock returns an itemized error when any line requests more than
// the available stock of a stock-managed product.
func checkStock(lines []model.CartLine) error {
	var shortages []model.StockShortage
	for i := range lines {
		p := &lines[i].Product
		qty := lines[i].Item.Quantity
		if !p.HasStockFor(qty) {
			shortages = append(shortages, model.StockShortage{
				ProductID:   p.ID.String(),
				ProductName: p.Name,
				Requested:   qty,
				Available:   p.StockQuantity,
			})
		}
	}
	if len(shortages) > 0 {
		return &model.InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// Start begins a checkout for the owner's cart.
func (s *checkoutService) Start(ctx context.Context, owner model.CartOwner) (*checkout.Session, error) {
	view, err := s.cartView(ctx, owner)
	if err != nil {
		return nil, err
	}
	if view.IsEmpty() {
		return nil, model.ErrCartEmpty
	}

	if err := checkStock(view.Lines); err != nil {
		s.logger.Info().
			Str("cart_id", view.Cart.ID.String()).
			Msg("checkout start rejected for insufficient stock")
		return nil, err
	}

	// An existing session for this cart is resumed, not reset.
	session, err := s.store.Get(ctx, view.Cart.ID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = checkout.NewSession(view.Cart.ID, owner.UserID)
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("cart_id", view.Cart.ID.String()).
		Str("next_step", string(session.NextStep())).
		Msg("checkout started")

	return session, nil
}

// session loads the owner's active checkout session and verifies the
// requested step may be entered. Entering a step out of order returns a
// CheckoutIncompleteError naming the earliest incomplete step.
func (s *checkoutService) session(ctx context.Context, owner model.CartOwner, step checkout.Step) (*checkout.Session, *model.CartView, error) {
	view, err := s.cartView(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.store.Get(ctx, view.Cart.ID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, model.ErrNoCheckoutSession
	}

	if !session.CanEnter(step) {
		return nil, nil, &model.CheckoutIncompleteError{NextStep: string(session.NextStep())}
	}

	return session, view, nil
}

// save persists the session after a completed step.
func (s *checkoutService) save(ctx context.Context, session *checkout.Session, step checkout.Step) (*checkout.Session, error) {
	session.Touch()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("cart_id", session.CartID.String()).
		Str("step", string(step)).
		Str("next_step", string(session.NextStep())).
		Msg("checkout step completed")

	return session, nil
}

// SubmitContact validates and stores the contact step.
func (s *checkoutService) SubmitContact(ctx context.Context, owner model.CartOwner, in checkout.ContactInput) (*checkout.Session, error) {
	session, _, err := s.session(ctx, owner, checkout.StepContact)
	if err != nil {
		return nil, err
	}

	contact, verr := checkout.ValidateContact(in)
	if verr != nil {
		return nil, verr
	}

	session.Contact = contact
	return s.save(ctx, session, checkout.StepContact)
}

// SubmitShippingAddress validates and stores the shipping address step.
func (s *checkoutService) SubmitShippingAddress(ctx context.Context, owner model.CartOwner, in checkout.AddressInput) (*checkout.Session, error) {
	session, _, err := s.session(ctx, owner, checkout.StepShippingAddress)
	if err != nil {
		return nil, err
	}

	addr, verr := checkout.ValidateAddress(in, "")
	if verr != nil {
		return nil, verr
	}

	session.ShippingAddress = addr
	return s.save(ctx, session, checkout.StepShippingAddress)
}

// SubmitBilling validates and stores the billing step.
func (s *checkoutService) SubmitBilling(ctx context.Context, owner model.CartOwner, in checkout.BillingInput) (*checkout.Session, error) {
	session, _, err := s.session(ctx, owner, checkout.StepBillingAddress)
	if err != nil {
		return nil, err
	}

	billing, verr := checkout.ValidateBilling(in)
	if verr != nil {
		return nil, verr
	}

	session.Billing = billing
	return s.save(ctx, session, checkout.StepBillingAddress)
}

// SelectShippingMethod resolves the method's cost against the cart total
// at selection time and snapshots it into the session.
func (s *checkoutService) SelectShippingMethod(ctx context.Context, owner model.CartOwner, methodID uuid.UUID) (*checkout.Session, error) {
	session, view, err := s.session(ctx, owner, checkout.StepShippingMethod)
	if err != nil {
		return nil, err
	}

	method, err := s.shippingRepo.GetByID(ctx, methodID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up shipping method: %w", err)
	}
	if method == nil {
		return nil, model.ErrShippingMethod
	}

	session.ShippingMethod = &checkout.ShippingSelection{
		MethodID:      method.ID,
		Name:          method.Name,
		Cost:          method.CostFor(view.TotalPrice),
		EstimatedDays: method.EstimatedDays,
	}
	return s.save(ctx, session, checkout.StepShippingMethod)
}

// SubmitPayment validates the payment step. Card number and CVV are
// checked here and never stored.
func (s *checkoutService) SubmitPayment(ctx context.Context, owner model.CartOwner, in checkout.PaymentInput) (*checkout.Session, error) {
	session, _, err := s.session(ctx, owner, checkout.StepPayment)
	if err != nil {
		return nil, err
	}

	payment, verr := checkout.ValidatePayment(in)
	if verr != nil {
		return nil, verr
	}

	session.Payment = payment
	return s.save(ctx, session, checkout.StepPayment)
}

// resolveDiscount validates the discount code against the table and
// clamps the amount so the final total can never go negative.
func resolveDiscount(ctx context.Context, discounts discount.Validator, code string, preDiscountTotal decimal.Decimal) (decimal.Decimal, error) {
	if code == "" {
		return decimal.Zero, nil
	}

	amount, err := discounts.Validate(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.GreaterThan(preDiscountTotal) {
		return preDiscountTotal, nil
	}
	return amount, nil
}

// Review computes the totals the order will be created with.
func (s *checkoutService) Review(ctx context.Context, owner model.CartOwner, discountCode string) (*ReviewSummary, error) {
	session, view, err := s.session(ctx, owner, checkout.StepReview)
	if err != nil {
		return nil, err
	}
	if view.IsEmpty() {
		return nil, model.ErrCartEmpty
	}

	subtotal := view.TotalPrice
	shippingCost := session.ShippingMethod.Cost
	taxAmount := s.taxPolicy.Amount(subtotal, shippingCost, *session.ShippingAddress)

	preDiscount := subtotal.Add(shippingCost).Add(taxAmount)
	discountAmount, err := resolveDiscount(ctx, s.discounts, discountCode, preDiscount)
	if err != nil {
		return nil, err
	}

	return &ReviewSummary{
		Session:        session,
		Cart:           view,
		BillingAddress: session.BillingAddress(),
		Subtotal:       subtotal,
		ShippingCost:   shippingCost,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		TotalAmount:    preDiscount.Sub(discountAmount),
	}, nil
}

// ListShippingMethods returns active methods with costs resolved for the
// owner's current cart total.
func (s *checkoutService) ListShippingMethods(ctx context.Context, owner model.CartOwner) ([]ShippingOption, error) {
	view, err := s.cartView(ctx, owner)
	if err != nil {
		return nil, err
	}

	methods, err := s.shippingRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping methods: %w", err)
	}

	options := make([]ShippingOption, len(methods))
	for i, m := range methods {
		options[i] = ShippingOption{
			Method:        m,
			EffectiveCost: m.CostFor(view.TotalPrice),
		}
	}
	return options, nil
}

// Abandon discards the owner's checkout session.
func (s *checkoutService) Abandon(ctx context.Context, owner model.CartOwner) error {
	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to find cart: %w", err)
	}
	if cart == nil {
		return nil
	}

	if err := s.store.Delete(ctx, cart.ID); err != nil {
		return err
	}

	s.logger.Info().Str("cart_id", cart.ID.String()).Msg("checkout abandoned")
	return nil
}
