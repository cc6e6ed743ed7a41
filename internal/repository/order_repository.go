package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gearhub/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, order_number, user_id, status, payment_status, payment_method,
	payment_reference, email, first_name, last_name, phone,
	shipping_street, shipping_apartment, shipping_city, shipping_state,
	shipping_postal_code, shipping_country,
	billing_street, billing_apartment, billing_city, billing_state,
	billing_postal_code, billing_country,
	shipping_method_name, subtotal, shipping_cost, tax_amount,
	discount_amount, total_amount, notes,
	created_at, updated_at, shipped_at, delivered_at`

// orderRepository implements OrderRepository using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// LockProducts reads the given products with FOR UPDATE row locks so a
// concurrent order creation cannot pass the stock check against the same
// rows until this transaction finishes.
func (r *orderRepository) LockProducts(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, productColumns)

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("id_count", len(ids)).Msg("failed to lock products")
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan locked product")
			return nil, fmt.Errorf("failed to scan locked product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating locked products")
		return nil, fmt.Errorf("error iterating locked products: %w", err)
	}

	return products, nil
}

// CreateOrder inserts the order row within the transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, user_id, status, payment_status, payment_method,
			payment_reference, email, first_name, last_name, phone,
			shipping_street, shipping_apartment, shipping_city, shipping_state,
			shipping_postal_code, shipping_country,
			billing_street, billing_apartment, billing_city, billing_state,
			billing_postal_code, billing_country,
			shipping_method_name, subtotal, shipping_cost, tax_amount,
			discount_amount, total_amount, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23,
			$24, $25, $26, $27, $28, $29, $30, $31, $32
		)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.UserID, order.Status,
		order.PaymentStatus, order.PaymentMethod, order.PaymentReference,
		order.Contact.Email, order.Contact.FirstName, order.Contact.LastName, order.Contact.Phone,
		order.ShippingAddress.Street, order.ShippingAddress.Apartment,
		order.ShippingAddress.City, order.ShippingAddress.State,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.BillingAddress.Street, order.BillingAddress.Apartment,
		order.BillingAddress.City, order.BillingAddress.State,
		order.BillingAddress.PostalCode, order.BillingAddress.Country,
		order.ShippingMethodName, order.Subtotal, order.ShippingCost,
		order.TaxAmount, order.DiscountAmount, order.TotalAmount,
		order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		// Unique violations on order_number are retried by the caller
		// with a fresh number, so keep the log at debug for those.
		if IsUniqueViolation(err) {
			r.logger.Debug().
				Str("order_number", order.OrderNumber).
				Msg("order number collision")
		} else {
			r.logger.Error().Err(err).
				Str("order_id", order.ID.String()).
				Msg("failed to create order")
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created")

	return nil
}

// CreateLineItems inserts the order's line items within the transaction.
func (r *orderRepository) CreateLineItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_line_items (
			id, order_id, product_id, product_name, product_sku,
			product_brand, quantity, unit_price, total_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.ProductSKU, item.ProductBrand, item.Quantity,
			item.UnitPrice, item.TotalPrice,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order line item")
			return fmt.Errorf("failed to create order line item: %w", err)
		}
	}

	return nil
}

// DecrementStock subtracts quantity from the product's stock. The guard
// on stock_quantity means a concurrent order that drained the stock
// first causes zero rows to match; the caller must roll back.
func (r *orderRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND manage_stock AND stock_quantity >= $2
	`

	tag, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// AppendStatusHistory inserts one audit row within the transaction.
func (r *orderRepository) AppendStatusHistory(ctx context.Context, tx pgx.Tx, entry *model.OrderStatusHistory) error {
	query := `
		INSERT INTO order_status_history (id, order_id, status, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.OrderID, entry.Status, entry.Note, entry.CreatedBy, entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", entry.OrderID.String()).
			Str("status", string(entry.Status)).
			Msg("failed to append status history")
		return fmt.Errorf("failed to append status history: %w", err)
	}

	return nil
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus,
		&o.PaymentMethod, &o.PaymentReference,
		&o.Contact.Email, &o.Contact.FirstName, &o.Contact.LastName, &o.Contact.Phone,
		&o.ShippingAddress.Street, &o.ShippingAddress.Apartment,
		&o.ShippingAddress.City, &o.ShippingAddress.State,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.BillingAddress.Street, &o.BillingAddress.Apartment,
		&o.BillingAddress.City, &o.BillingAddress.State,
		&o.BillingAddress.PostalCode, &o.BillingAddress.Country,
		&o.ShippingMethodName, &o.Subtotal, &o.ShippingCost, &o.TaxAmount,
		&o.DiscountAmount, &o.TotalAmount, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.ShippedAt, &o.DeliveredAt,
	)
}

// GetByNumber retrieves an order and its line items by order number.
func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, []model.OrderLineItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE order_number = $1`, orderColumns)

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, number), &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_number", number).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", number).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, product_sku,
		       product_brand, quantity, unit_price, total_price, created_at
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, order.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_number", number).Msg("failed to query order line items")
		return nil, nil, fmt.Errorf("failed to query order line items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderLineItem
	for rows.Next() {
		var item model.OrderLineItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ProductSKU, &item.ProductBrand, &item.Quantity,
			&item.UnitPrice, &item.TotalPrice, &item.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line item")
			return nil, nil, fmt.Errorf("failed to scan order line item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line items")
		return nil, nil, fmt.Errorf("error iterating order line items: %w", err)
	}

	return &order, items, nil
}

// GetByNumberForUpdate reads the order row with a lock held for the rest
// of the transaction, serialising concurrent status transitions.
func (r *orderRepository) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE order_number = $1 FOR UPDATE`, orderColumns)

	var order model.Order
	err := scanOrder(tx.QueryRow(ctx, query, number), &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", number).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return &order, nil
}

// UpdateStatus writes the order's status and lifecycle timestamps.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, shippedAt, deliveredAt *time.Time) error {
	query := `
		UPDATE orders
		SET status = $2,
		    shipped_at = COALESCE($3, shipped_at),
		    delivered_at = COALESCE($4, delivered_at),
		    updated_at = now()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, orderID, status, shippedAt, deliveredAt); err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

// UpdatePaymentStatus writes the payment status and reference.
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus, reference string) error {
	query := `
		UPDATE orders
		SET payment_status = $2, payment_reference = $3, updated_at = now()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, orderID, status, reference); err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("payment_status", string(status)).
			Msg("failed to update payment status")
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return nil
}

// ListByUser returns the user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, orderColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query user orders")
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// GetStatusHistory returns the order's audit trail, newest first.
func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusHistory, error) {
	query := `
		SELECT id, order_id, status, note, created_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query status history")
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var entries []model.OrderStatusHistory
	for rows.Next() {
		var entry model.OrderStatusHistory
		err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status, &entry.Note, &entry.CreatedBy, &entry.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan status history row")
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating status history rows")
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return entries, nil
}
