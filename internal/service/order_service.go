package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gearhub/internal/checkout"
	"gearhub/internal/discount"
	"gearhub/internal/mail"
	"gearhub/internal/model"
	"gearhub/internal/repository"
	"gearhub/internal/tax"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxOrderNumberAttempts bounds retries when a generated order number
// collides with an existing one.
const maxOrderNumberAttempts = 5

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	store     checkout.Store
	discounts discount.Validator
	taxPolicy tax.Policy
	mailer    mail.Sender
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	store checkout.Store,
	discounts discount.Validator,
	taxPolicy tax.Policy,
	mailer mail.Sender,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		store:     store,
		discounts: discounts,
		taxPolicy: taxPolicy,
		mailer:    mailer,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// generateOrderNumber builds a date-prefixed unique order number,
// e.g. ORD-20260831-3FA85F64. Uniqueness is enforced by the database;
// collisions are retried by the caller.
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

// PlaceOrder turns the reviewed checkout session into an order in a
// single transaction.
func (s *orderService) PlaceOrder(ctx context.Context, owner model.CartOwner, in PlaceOrderInput) (*OrderResult, error) {
	cart, err := s.cartRepo.Find(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrNoCheckoutSession
	}

	lines, err := s.cartRepo.GetLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, model.ErrCartEmpty
	}

	session, err := s.store.Get(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, model.ErrNoCheckoutSession
	}
	if !session.ReadyForReview() {
		return nil, &model.CheckoutIncompleteError{NextStep: string(session.NextStep())}
	}
	if !in.TermsAccepted {
		return nil, model.ErrTermsNotAccepted
	}

	var result *OrderResult
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		result, err = s.placeOnce(ctx, cart.ID, owner, session, lines, in)
		if err == nil {
			break
		}
		if repository.IsUniqueViolation(err) {
			s.logger.Warn().
				Int("attempt", attempt).
				Msg("order number collision, retrying with a new number")
			continue
		}
		return nil, err
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("exhausted order number attempts")
		return nil, model.ErrOrderPlacement
	}

	// The session is gone either way; a leftover document would only
	// expire, but delete it eagerly.
	if err := s.store.Delete(ctx, cart.ID); err != nil {
		s.logger.Warn().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to delete checkout session after placement")
	}

	// Confirmation dispatch is fire-and-forget: a mail failure must
	// never fail an already-committed order.
	go func(order *model.Order, items []model.OrderLineItem) {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.mailer.SendOrderConfirmation(sendCtx, order, items); err != nil {
			s.logger.Warn().Err(err).
				Str("order_number", order.OrderNumber).
				Msg("order confirmation dispatch failed")
		}
	}(result.Order, result.Items)

	s.logger.Info().
		Str("order_number", result.Order.OrderNumber).
		Str("total_amount", result.Order.TotalAmount.StringFixed(2)).
		Int("line_count", len(result.Items)).
		Msg("order placed")

	return result, nil
}

// placeOnce runs one attempt of the order-creation transaction. All
// writes — order, line items, stock decrements, history, cart clear —
// commit together or not at all.
func (s *orderService) placeOnce(
	ctx context.Context,
	cartID uuid.UUID,
	owner model.CartOwner,
	session *checkout.Session,
	lines []model.CartLine,
	in PlaceOrderInput,
) (result *OrderResult, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback order transaction")
			}
		}
	}()

	productIDs := make([]uuid.UUID, len(lines))
	for i := range lines {
		productIDs[i] = lines[i].Item.ProductID
	}

	// Row locks serialise the check-then-decrement against concurrent
	// orders for the same products.
	locked, err := s.orderRepo.LockProducts(ctx, tx, productIDs)
	if err != nil {
		return nil, err
	}

	productsByID := make(map[uuid.UUID]*model.Product, len(locked))
	for i := range locked {
		productsByID[locked[i].ID] = &locked[i]
	}

	var shortages []model.StockShortage
	for i := range lines {
		qty := lines[i].Item.Quantity
		p, ok := productsByID[lines[i].Item.ProductID]
		if !ok || !p.IsActive {
			name := lines[i].Product.Name
			shortages = append(shortages, model.StockShortage{
				ProductID:   lines[i].Item.ProductID.String(),
				ProductName: name,
				Requested:   qty,
				Available:   0,
			})
			continue
		}
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
		err = &model.InsufficientStockError{Shortages: shortages}
		return nil, err
	}

	now := time.Now().UTC()

	// Build the line-item snapshots from the locked rows so the prices
	// can't drift between the check and the insert.
	orderID := uuid.New()
	items := make([]model.OrderLineItem, len(lines))
	subtotal := decimal.Zero
	for i := range lines {
		p := productsByID[lines[i].Item.ProductID]
		item := model.OrderLineItem{
			ID:           uuid.New(),
			OrderID:      orderID,
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductSKU:   p.SKU,
			ProductBrand: p.Brand,
			Quantity:     lines[i].Item.Quantity,
			UnitPrice:    p.EffectivePrice(),
			CreatedAt:    now,
		}
		item.RecomputeTotal()
		items[i] = item
		subtotal = subtotal.Add(item.TotalPrice)
	}

	shippingCost := session.ShippingMethod.Cost
	taxAmount := s.taxPolicy.Amount(subtotal, shippingCost, *session.ShippingAddress)
	preDiscount := subtotal.Add(shippingCost).Add(taxAmount)

	discountAmount, err := resolveDiscount(ctx, s.discounts, in.DiscountCode, preDiscount)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:                 orderID,
		OrderNumber:        generateOrderNumber(now),
		UserID:             owner.UserID,
		Status:             model.OrderStatusPending,
		PaymentStatus:      model.PaymentStatusPending,
		PaymentMethod:      session.Payment.Method,
		Contact:            *session.Contact,
		ShippingAddress:    *session.ShippingAddress,
		BillingAddress:     session.BillingAddress(),
		ShippingMethodName: session.ShippingMethod.Name,
		Subtotal:           subtotal,
		ShippingCost:       shippingCost,
		TaxAmount:          taxAmount,
		DiscountAmount:     discountAmount,
		TotalAmount:        preDiscount.Sub(discountAmount),
		Notes:              strings.TrimSpace(in.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = s.orderRepo.CreateLineItems(ctx, tx, items); err != nil {
		return nil, err
	}

	for i := range items {
		p := productsByID[items[i].ProductID]
		if !p.ManageStock {
			continue
		}
		var ok bool
		ok, err = s.orderRepo.DecrementStock(ctx, tx, p.ID, items[i].Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			// With the rows locked above this cannot normally happen;
			// treat it as a lost stock race and roll everything back.
			err = &model.InsufficientStockError{Shortages: []model.StockShortage{{
				ProductID:   p.ID.String(),
				ProductName: p.Name,
				Requested:   items[i].Quantity,
				Available:   p.StockQuantity,
			}}}
			return nil, err
		}
	}

	history := &model.OrderStatusHistory{
		ID:        uuid.New(),
		OrderID:   orderID,
		Status:    model.OrderStatusPending,
		Note:      "Order placed",
		CreatedBy: owner.UserID,
		CreatedAt: now,
	}
	if err = s.orderRepo.AppendStatusHistory(ctx, tx, history); err != nil {
		return nil, err
	}

	if err = s.cartRepo.Clear(ctx, tx, cartID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to commit order transaction")
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	return &OrderResult{Order: order, Items: items}, nil
}

// visibleTo reports whether the viewer may read the order. Orders owned
// by another user, and guest orders queried with the wrong email, are
// both reported as not found so existence never leaks.
func visibleTo(order *model.Order, viewer OrderViewer) bool {
	if order.UserID != nil {
		return viewer.UserID != nil && *viewer.UserID == *order.UserID
	}
	return viewer.Email != "" && strings.EqualFold(viewer.Email, order.Contact.Email)
}

// GetByNumber retrieves an order visible to the viewer.
func (s *orderService) GetByNumber(ctx context.Context, viewer OrderViewer, number string) (*OrderResult, error) {
	order, items, err := s.orderRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || !visibleTo(order, viewer) {
		return nil, model.ErrOrderNotFound
	}

	return &OrderResult{Order: order, Items: items}, nil
}

// ListByUser returns the user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetStatusHistory returns the audit trail for an order visible to the
// viewer.
func (s *orderService) GetStatusHistory(ctx context.Context, viewer OrderViewer, number string) ([]model.OrderStatusHistory, error) {
	order, _, err := s.orderRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || !visibleTo(order, viewer) {
		return nil, model.ErrOrderNotFound
	}

	history, err := s.orderRepo.GetStatusHistory(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	return history, nil
}

// TransitionStatus applies an administrative status change. The order
// row is locked for the duration so concurrent transitions serialise,
// and exactly one history row is appended per transition.
func (s *orderService) TransitionStatus(ctx context.Context, number string, next model.OrderStatus, note string, actor *uuid.UUID) (order *model.Order, err error) {
	if !model.ValidOrderStatus(next) {
		return nil, &model.InvalidTransitionError{To: next}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback status transition")
			}
		}
	}()

	order, err = s.orderRepo.GetByNumberForUpdate(ctx, tx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		err = &model.InvalidTransitionError{From: order.Status, To: next}
		return nil, err
	}

	now := time.Now().UTC()
	var shippedAt, deliveredAt *time.Time
	switch next {
	case model.OrderStatusShipped:
		shippedAt = &now
	case model.OrderStatusDelivered:
		deliveredAt = &now
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, next, shippedAt, deliveredAt); err != nil {
		return nil, err
	}

	history := &model.OrderStatusHistory{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    next,
		Note:      note,
		CreatedBy: actor,
		CreatedAt: now,
	}
	if err = s.orderRepo.AppendStatusHistory(ctx, tx, history); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status transition: %w", err)
	}

	s.logger.Info().
		Str("order_number", number).
		Str("from", string(order.Status)).
		Str("to", string(next)).
		Msg("order status transitioned")

	order.Status = next
	order.UpdatedAt = now
	if shippedAt != nil {
		order.ShippedAt = shippedAt
	}
	if deliveredAt != nil {
		order.DeliveredAt = deliveredAt
	}
	return order, nil
}

// RecordPaymentStatus records the payment collaborator's outcome.
func (s *orderService) RecordPaymentStatus(ctx context.Context, number string, status model.PaymentStatus, reference string) (*model.Order, error) {
	switch status {
	case model.PaymentStatusPending, model.PaymentStatusPaid,
		model.PaymentStatusFailed, model.PaymentStatusRefunded:
	default:
		return nil, model.NewDomainError(model.ErrCodeValidation, fmt.Sprintf("unknown payment status %q", status))
	}

	order, _, err := s.orderRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, status, reference); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_number", number).
		Str("payment_status", string(status)).
		Msg("payment status recorded")

	order.PaymentStatus = status
	order.PaymentReference = reference
	return order, nil
}
