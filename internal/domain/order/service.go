package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/rmoura/storefront/internal/domain/customer"
	"github.com/rmoura/storefront/internal/domain/product"
)

// OrderItem is a requested line item: a product reference and how many units
// to buy.
type OrderItem struct {
	ProductID string
	Quantity  int
}

// CreateOrderRequest holds the input for creating an order.
type CreateOrderRequest struct {
	CustomerID string
	Items      []OrderItem
}

// Service encapsulates the order creation workflow.
type Service struct {
	customers customer.Repository
	products  product.Repository
	orders    Repository
}

// NewService creates an order Service with the required store dependencies.
func NewService(
	customers customer.Repository,
	products product.Repository,
	orders Repository,
) *Service {
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// CreateOrder validates the request, snapshots product prices into line
// items, and persists the order together with the stock decrement.
//
// Validation failures return typed errors (customer.ErrNotFound,
// *ProductsNotFoundError, *OutOfStockError, ...) and leave both stores
// untouched. The stock check runs twice: once here against the fetched
// products for a precise error, and again inside Repository.Create under the
// persistence transaction, so two orders racing over the same stock can never
// both succeed.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	// Validate quantities and collect product IDs, rejecting duplicates.
	ids := make([]string, len(req.Items))
	seen := make(map[string]struct{}, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		if _, ok := seen[item.ProductID]; ok {
			return nil, &DuplicateItemError{ProductID: item.ProductID}
		}
		seen[item.ProductID] = struct{}{}
		ids[i] = item.ProductID
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrap(err, "get customer")
	}

	// Batch fetch all referenced products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	if len(fetched) != len(ids) {
		missing := make([]string, 0, len(ids)-len(fetched))
		for _, id := range ids {
			if _, ok := productMap[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, &ProductsNotFoundError{IDs: missing}
	}

	// Stock pre-check plus line item construction with price snapshots.
	items := make([]LineItem, len(req.Items))
	deltas := make([]StockDelta, len(req.Items))
	for i, item := range req.Items {
		p := productMap[item.ProductID]
		if p.Quantity < item.Quantity {
			return nil, &OutOfStockError{
				ProductID: p.ID,
				Requested: item.Quantity,
				Available: p.Quantity,
			}
		}
		items[i] = LineItem{
			ProductID: p.ID,
			Price:     p.Price,
			Quantity:  item.Quantity,
		}
		deltas[i] = StockDelta{ProductID: p.ID, Quantity: item.Quantity}
	}

	o := &Order{
		ID:         uuid.New().String(),
		CustomerID: req.CustomerID,
		Items:      items,
	}
	if err := s.orders.Create(ctx, o, deltas); err != nil {
		var oos *OutOfStockError
		if errors.As(err, &oos) {
			return nil, oos
		}
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// GetOrder returns an order by id, or ErrNotFound.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}
