package repository

import (
	"context"
	"errors"
	"fmt"

	"gearhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// ownerFilter returns the WHERE clause and argument selecting the
// owner's cart. A cart belongs to a user or a session, never both.
func ownerFilter(owner model.CartOwner) (string, any) {
	if owner.UserID != nil {
		return "user_id = $1", *owner.UserID
	}
	return "session_token = $1", owner.SessionToken
}

// Find returns the owner's cart, or nil when none exists.
func (r *cartRepository) Find(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	where, arg := ownerFilter(owner)
	query := fmt.Sprintf(`
		SELECT id, user_id, session_token, created_at, updated_at
		FROM carts
		WHERE %s
	`, where)

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&cart.ID, &cart.UserID, &cart.SessionToken, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	return &cart, nil
}

// GetOrCreate returns the owner's cart, creating it on first use.
func (r *cartRepository) GetOrCreate(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	cart, err := r.Find(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	query := `
		INSERT INTO carts (id, user_id, session_token)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, session_token, created_at, updated_at
	`

	var sessionToken *string
	if owner.UserID == nil {
		sessionToken = &owner.SessionToken
	}

	var created model.Cart
	err = r.pool.QueryRow(ctx, query, uuid.New(), owner.UserID, sessionToken).Scan(
		&created.ID, &created.UserID, &created.SessionToken, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		// Lost a create race with a concurrent request for the same
		// owner: re-read the winner's cart.
		if IsUniqueViolation(err) {
			return r.Find(ctx, owner)
		}
		r.logger.Error().Err(err).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	r.logger.Debug().Str("cart_id", created.ID.String()).Msg("cart created")
	return &created, nil
}

// GetLines returns the cart's items joined with their products.
func (r *cartRepository) GetLines(ctx context.Context, cartID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		       p.id, p.name, p.sku, p.brand, p.description, p.price, p.sale_price,
		       p.stock_quantity, p.manage_stock, p.is_active, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var line model.CartLine
		err := rows.Scan(
			&line.Item.ID, &line.Item.CartID, &line.Item.ProductID,
			&line.Item.Quantity, &line.Item.CreatedAt, &line.Item.UpdatedAt,
			&line.Product.ID, &line.Product.Name, &line.Product.SKU,
			&line.Product.Brand, &line.Product.Description, &line.Product.Price,
			&line.Product.SalePrice, &line.Product.StockQuantity,
			&line.Product.ManageStock, &line.Product.IsActive,
			&line.Product.CreatedAt, &line.Product.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart lines")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// AddItem inserts a line or increments the quantity of an existing one.
func (r *cartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
	`

	if _, err := r.pool.Exec(ctx, query, uuid.New(), cartID, productID, quantity); err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to add cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return r.touch(ctx, cartID)
}

// SetQuantity upserts the line's quantity; quantity <= 0 removes it.
func (r *cartRepository) SetQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return r.RemoveItem(ctx, cartID, productID)
	}

	query := `
		UPDATE cart_items
		SET quantity = $3, updated_at = now()
		WHERE cart_id = $1 AND product_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, cartID, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to update cart item quantity")
		return false, fmt.Errorf("failed to update cart item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	return true, r.touch(ctx, cartID)
}

// RemoveItem deletes the line. Returns false when no line existed.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	tag, err := r.pool.Exec(ctx, query, cartID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove cart item")
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	return true, r.touch(ctx, cartID)
}

// Clear removes every line from the cart within the transaction.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Delete removes the cart record; cart_items cascade.
func (r *cartRepository) Delete(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func (r *cartRepository) touch(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}
