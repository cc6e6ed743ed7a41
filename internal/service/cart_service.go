package service

import (
	"context"
	"fmt"

	"gearhub/internal/model"
	"gearhub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// view loads the cart's lines and computes totals.
func (s *cartService) view(ctx context.Context, cart *model.Cart) (*model.CartView, error) {
	lines, err := s.cartRepo.GetLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}

	v := &model.CartView{Cart: *cart, Lines: lines}
	v.ComputeTotals()
	return v, nil
}

// Get returns the owner's cart, creating it on first use.
func (s *cartService) Get(ctx context.Context, owner model.CartOwner) (*model.CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return s.view(ctx, cart)
}

// AddItem adds quantity of a product to the cart. Stock limits are not
// enforced here; availability is checked at checkout start and again at
// order creation.
func (s *cartService) AddItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID, quantity int) (*model.CartView, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, model.ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Msg("cart item added")

	return s.view(ctx, cart)
}

// SetQuantity sets a line's quantity; <= 0 removes the line.
func (s *cartService) SetQuantity(ctx context.Context, owner model.CartOwner, productID uuid.UUID, quantity int) (*model.CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	found, err := s.cartRepo.SetQuantity(ctx, cart.ID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to set cart item quantity: %w", err)
	}
	if !found && quantity > 0 {
		return nil, model.ErrCartItemNotFound
	}

	return s.view(ctx, cart)
}

// RemoveItem removes a line. A missing line is reported via the flag,
// not as an error.
func (s *cartService) RemoveItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID) (*model.CartView, bool, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cart: %w", err)
	}

	removed, err := s.cartRepo.RemoveItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	view, err := s.view(ctx, cart)
	if err != nil {
		return nil, removed, err
	}
	return view, removed, nil
}

// Merge folds the anonymous session cart into the user's cart, then
// discards the session cart. Quantities accumulate line by line, same as
// adding the items by hand.
func (s *cartService) Merge(ctx context.Context, sessionToken string, userID uuid.UUID) (*model.CartView, error) {
	userCart, err := s.cartRepo.GetOrCreate(ctx, model.CartOwner{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get user cart: %w", err)
	}

	sessionCart, err := s.cartRepo.Find(ctx, model.CartOwner{SessionToken: sessionToken})
	if err != nil {
		return nil, fmt.Errorf("failed to find session cart: %w", err)
	}
	if sessionCart == nil {
		return s.view(ctx, userCart)
	}

	lines, err := s.cartRepo.GetLines(ctx, sessionCart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session cart lines: %w", err)
	}

	for _, line := range lines {
		if err := s.cartRepo.AddItem(ctx, userCart.ID, line.Item.ProductID, line.Item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to merge cart item: %w", err)
		}
	}

	if err := s.cartRepo.Delete(ctx, sessionCart.ID); err != nil {
		return nil, fmt.Errorf("failed to delete session cart: %w", err)
	}

	s.logger.Info().
		Str("user_cart_id", userCart.ID.String()).
		Str("session_cart_id", sessionCart.ID.String()).
		Int("merged_lines", len(lines)).
		Msg("session cart merged into user cart")

	return s.view(ctx, userCart)
}
