package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmoura/storefront/internal/domain/order"
)

const (
	// Conditional decrement: zero rows affected means insufficient stock.
	decrementStockSQL = `UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2`

	getStockSQL = `SELECT quantity FROM products WHERE id = $1`

	createOrderSQL = `INSERT INTO orders (id, customer_id) VALUES ($1, $2)
		RETURNING created_at`

	createLineItemSQL = `INSERT INTO orders_products (id, order_id, product_id, price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	getOrderByIDSQL = `SELECT id, customer_id, created_at FROM orders WHERE id = $1`

	getLineItemsSQL = `SELECT product_id, price, quantity FROM orders_products
		WHERE order_id = $1 ORDER BY created_at, product_id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order and decrements product stock in one transaction.
// Each decrement is conditional on sufficient stock, so a concurrent order
// that drained a product after the caller's validation rolls the whole
// transaction back with an *order.OutOfStockError instead of driving the
// quantity negative.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, deltas []order.StockDelta) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock product rows in a stable order so two concurrent orders touching
	// the same products cannot deadlock.
	sorted := make([]order.StockDelta, len(deltas))
	copy(sorted, deltas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	for _, d := range sorted {
		tag, err := tx.Exec(ctx, decrementStockSQL, d.ProductID, d.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for product %q: %w", d.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			available := 0
			if err := tx.QueryRow(ctx, getStockSQL, d.ProductID).Scan(&available); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("reading stock for product %q: %w", d.ProductID, err)
			}
			return &order.OutOfStockError{
				ProductID: d.ProductID,
				Requested: d.Quantity,
				Available: available,
			}
		}
	}

	if err := tx.QueryRow(ctx, createOrderSQL, o.ID, o.CustomerID).Scan(&o.CreatedAt); err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err := tx.Exec(ctx, createLineItemSQL,
			uuid.New().String(), o.ID, item.ProductID, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("creating line item for product %q: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

// GetByID returns an order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.CustomerID, &o.CreatedAt)
		return o, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, getLineItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting line items for order %q: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (order.LineItem, error) {
		var item order.LineItem
		err := row.Scan(&item.ProductID, &item.Price, &item.Quantity)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting line items for order %q: %w", id, err)
	}

	return &o, nil
}
