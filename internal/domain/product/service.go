package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors for product input validation.
var (
	ErrNameRequired     = fmt.Errorf("name required")
	ErrNegativePrice    = fmt.Errorf("price must not be negative")
	ErrNegativeQuantity = fmt.Errorf("quantity must not be negative")
	ErrUpdatesRequired  = fmt.Errorf("updates required")
)

// CreateProductRequest holds the input for registering a catalog product.
type CreateProductRequest struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Service encapsulates product catalog business logic.
type Service struct {
	products Repository
}

// NewService creates a product Service backed by the given repository.
func NewService(products Repository) *Service {
	return &Service{products: products}
}

// CreateProduct registers a new catalog product. A product whose name matches
// an existing one is rejected with ErrDuplicateName and nothing is written.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if req.Quantity < 0 {
		return nil, ErrNegativeQuantity
	}

	existing, err := s.products.GetByName(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "lookup product by name")
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	p := &Product{
		ID:       uuid.New().String(),
		Name:     name,
		Price:    req.Price.Round(2),
		Quantity: req.Quantity,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}

	return p, nil
}

// UpdateStock overwrites stock levels with the given absolute quantities.
// Updates referencing products that no longer exist are dropped; the
// returned slice holds only products that were written, so callers can
// compare lengths to detect the drop.
func (s *Service) UpdateStock(ctx context.Context, updates []QuantityUpdate) ([]Product, error) {
	if len(updates) == 0 {
		return nil, ErrUpdatesRequired
	}
	for _, u := range updates {
		if u.Quantity < 0 {
			return nil, ErrNegativeQuantity
		}
	}

	updated, err := s.products.UpdateQuantities(ctx, updates)
	if err != nil {
		return nil, errors.Wrap(err, "update quantities")
	}
	return updated, nil
}

// GetProduct returns a product by id, or ErrNotFound.
func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts returns the full catalog.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.products.List(ctx)
}
