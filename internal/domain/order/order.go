package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is an immutable record of a purchase: a customer reference plus the
// line items with their price snapshots.
type Order struct {
	ID         string
	CustomerID string
	Items      []LineItem
	CreatedAt  time.Time
}

// LineItem is one product entry within an order. Price is a snapshot of the
// product price at order time; later catalog price changes do not affect it.
type LineItem struct {
	ProductID string
	Price     decimal.Decimal
	Quantity  int
}

// StockDelta is the number of units an order removes from a product's stock.
type StockDelta struct {
	ProductID string
	Quantity  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order and applies its stock deltas in a single
	// atomic step. When a concurrent order has drained a product's stock
	// between validation and persistence, Create writes nothing and returns
	// an *OutOfStockError.
	Create(ctx context.Context, o *Order, deltas []StockDelta) error
	GetByID(ctx context.Context, id string) (*Order, error)
}
