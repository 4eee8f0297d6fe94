package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rmoura/storefront/internal/domain/order"
	"github.com/rmoura/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository is an in-memory product.Repository.
type ProductRepository struct {
	mu     sync.RWMutex
	byID   map[string]product.Product
	byName map[string]string
}

// NewProductRepository returns an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		byID:   make(map[string]product.Product),
		byName: make(map[string]string),
	}
}

// List returns the catalog ordered by name.
func (r *ProductRepository) List(_ context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetByID returns a product or product.ErrNotFound.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// GetByIDs returns the products matching the given ids, skipping unknown ones.
func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetByName returns a product or product.ErrNotFound.
func (r *ProductRepository) GetByName(_ context.Context, name string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, product.ErrNotFound
	}
	p := r.byID[id]
	return &p, nil
}

// Create stores a new product, rejecting duplicate names.
func (r *ProductRepository) Create(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[p.Name]; exists {
		return product.ErrDuplicateName
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.byID[p.ID] = *p
	r.byName[p.Name] = p.ID
	return nil
}

// UpdateQuantities overwrites stock levels, skipping unknown ids.
func (r *ProductRepository) UpdateQuantities(_ context.Context, updates []product.QuantityUpdate) ([]product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]product.Product, 0, len(updates))
	for _, u := range updates {
		p, ok := r.byID[u.ID]
		if !ok {
			continue
		}
		p.Quantity = u.Quantity
		p.UpdatedAt = time.Now()
		r.byID[u.ID] = p
		updated = append(updated, p)
	}
	return updated, nil
}

// decrementAll applies the deltas under one lock with all-or-nothing
// semantics. It backs the memory OrderRepository's atomic create.
func (r *ProductRepository) decrementAll(deltas []order.StockDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range deltas {
		p, ok := r.byID[d.ProductID]
		if !ok || p.Quantity < d.Quantity {
			available := 0
			if ok {
				available = p.Quantity
			}
			return &order.OutOfStockError{
				ProductID: d.ProductID,
				Requested: d.Quantity,
				Available: available,
			}
		}
	}
	for _, d := range deltas {
		p := r.byID[d.ProductID]
		p.Quantity -= d.Quantity
		p.UpdatedAt = time.Now()
		r.byID[d.ProductID] = p
	}
	return nil
}
