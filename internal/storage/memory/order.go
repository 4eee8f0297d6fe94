package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rmoura/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository is an in-memory order.Repository. It shares the product
// repository so order creation can decrement stock atomically, mirroring the
// transactional guarantee of the postgres implementation.
type OrderRepository struct {
	products *ProductRepository

	mu   sync.RWMutex
	byID map[string]order.Order
}

// NewOrderRepository returns an in-memory order repository that decrements
// stock in the given product repository.
func NewOrderRepository(products *ProductRepository) *OrderRepository {
	return &OrderRepository{
		products: products,
		byID:     make(map[string]order.Order),
	}
}

// Create decrements stock with all-or-nothing semantics, then stores the
// order. A delta that cannot be satisfied returns *order.OutOfStockError and
// leaves all stock untouched.
func (r *OrderRepository) Create(_ context.Context, o *order.Order, deltas []order.StockDelta) error {
	if err := r.products.decrementAll(deltas); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	stored := *o
	stored.Items = append([]order.LineItem(nil), o.Items...)
	r.byID[o.ID] = stored
	return nil
}

// GetByID returns an order or order.ErrNotFound.
func (r *OrderRepository) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	out := o
	out.Items = append([]order.LineItem(nil), o.Items...)
	return &out, nil
}
