package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmoura/storefront/internal/domain/customer"
	"github.com/rmoura/storefront/internal/domain/order"
	"github.com/rmoura/storefront/internal/domain/product"
)

func seedStores(t *testing.T, stock int) (*CustomerRepository, *ProductRepository, *OrderRepository, *product.Product) {
	t.Helper()
	customers := NewCustomerRepository()
	products := NewProductRepository()
	orders := NewOrderRepository(products)

	require.NoError(t, customers.Create(context.Background(), &customer.Customer{
		ID: "c1", Name: "Alice", Email: "alice@example.com",
	}))
	p := &product.Product{
		ID:       uuid.New().String(),
		Name:     "Widget",
		Price:    decimal.RequireFromString("9.99"),
		Quantity: stock,
	}
	require.NoError(t, products.Create(context.Background(), p))
	return customers, products, orders, p
}

func TestOrderCreate_DecrementsStock(t *testing.T) {
	_, products, orders, p := seedStores(t, 5)

	o := &order.Order{
		ID:         uuid.New().String(),
		CustomerID: "c1",
		Items:      []order.LineItem{{ProductID: p.ID, Price: p.Price, Quantity: 3}},
	}
	err := orders.Create(context.Background(), o, []order.StockDelta{{ProductID: p.ID, Quantity: 3}})
	require.NoError(t, err)

	stored, err := products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)

	got, err := orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Items, got.Items)
}

func TestOrderCreate_AllOrNothing(t *testing.T) {
	_, products, orders, p1 := seedStores(t, 5)
	p2 := &product.Product{
		ID:       uuid.New().String(),
		Name:     "Gadget",
		Price:    decimal.RequireFromString("14.50"),
		Quantity: 1,
	}
	require.NoError(t, products.Create(context.Background(), p2))

	err := orders.Create(context.Background(), &order.Order{ID: uuid.New().String(), CustomerID: "c1"},
		[]order.StockDelta{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 5},
		})

	var oos *order.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, p2.ID, oos.ProductID)

	stored, err := products.GetByID(context.Background(), p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Quantity, "first delta must be rolled back with the failed one")
}

// Two concurrent orders racing for the same stock: exactly one succeeds and
// the quantity never goes negative.
func TestCreateOrder_ConcurrentStockRace(t *testing.T) {
	customers, products, orders, p := seedStores(t, 4)
	svc := order.NewService(customers, products, orders)

	req := order.CreateOrderRequest{
		CustomerID: "c1",
		Items:      []order.OrderItem{{ProductID: p.ID, Quantity: 4}},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), req)
		}()
	}
	wg.Wait()

	var successes, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			var oos *order.OutOfStockError
			require.True(t, errors.As(err, &oos), "unexpected error: %v", err)
			outOfStock++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, outOfStock)

	stored, err := products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
}

func TestUpdateQuantities_SkipsVanishedProducts(t *testing.T) {
	_, products, _, p := seedStores(t, 5)

	updated, err := products.UpdateQuantities(context.Background(), []product.QuantityUpdate{
		{ID: p.ID, Quantity: 7},
		{ID: "vanished", Quantity: 3},
	})

	require.NoError(t, err)
	require.Len(t, updated, 1, "vanished product is dropped from the result")
	assert.Equal(t, 7, updated[0].Quantity)
}

func TestCustomerRepository_DuplicateEmail(t *testing.T) {
	customers, _, _, _ := seedStores(t, 1)

	err := customers.Create(context.Background(), &customer.Customer{
		ID: "c2", Name: "Other Alice", Email: "alice@example.com",
	})
	require.ErrorIs(t, err, customer.ErrDuplicateEmail)
}
