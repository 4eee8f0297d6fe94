package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrDuplicateName is returned when a product with the given name is already
// registered. Product names are unique across the catalog.
var ErrDuplicateName = errors.New("product name already registered")

// Product represents a catalog item available for purchase. Quantity is the
// current stock level and never goes below zero.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuantityUpdate sets a product's stock to an absolute level. The caller is
// responsible for computing the new level from the current one.
type QuantityUpdate struct {
	ID       string
	Quantity int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs returns products matching any of the given IDs. Unknown IDs
	// are omitted from the result; callers compare lengths to detect them.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	// UpdateQuantities overwrites stock levels in one batch and returns the
	// updated products. Updates referencing products that no longer exist
	// are skipped; the returned slice contains only products that were
	// actually written.
	UpdateQuantities(ctx context.Context, updates []QuantityUpdate) ([]Product, error)
}
