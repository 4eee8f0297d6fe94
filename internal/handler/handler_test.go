package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmoura/storefront/internal/domain/customer"
	"github.com/rmoura/storefront/internal/domain/order"
	"github.com/rmoura/storefront/internal/domain/product"
	"github.com/rmoura/storefront/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(products)

	h := NewHandler(
		customer.NewService(customers),
		product.NewService(products),
		order.NewService(customers, products, orders),
	)

	mux := http.NewServeMux()
	h.Routes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func createCustomer(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := postJSON(t, srv, "/api/customers",
		`{"name": "Alice", "email": "alice@example.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func createProduct(t *testing.T, srv *httptest.Server, name string, price string, quantity int) string {
	t.Helper()
	resp, body := postJSON(t, srv, "/api/products",
		`{"name": "`+name+`", "price": `+price+`, "quantity": `+itoa(quantity)+`}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestCreateProduct_DuplicateName(t *testing.T) {
	srv := newTestServer(t)
	createProduct(t, srv, "Widget", "9.99", 5)

	resp, body := postJSON(t, srv, "/api/products",
		`{"name": "Widget", "price": 1.00, "quantity": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "already registered")
}

func TestUpdateStock(t *testing.T) {
	srv := newTestServer(t)
	productID := createProduct(t, srv, "Widget", "9.99", 5)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/products/stock",
		strings.NewReader(`[{"id": "`+productID+`", "quantity": 12}, {"id": "ghost", "quantity": 1}]`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	require.Len(t, updated, 1, "unknown id dropped from response")
	assert.Equal(t, float64(12), updated[0]["quantity"])

	_, stored := getJSON(t, srv, "/api/products/"+productID)
	assert.Equal(t, float64(12), stored["quantity"])
}

func TestCreateOrder_Flow(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv)
	productID := createProduct(t, srv, "Widget", "9.99", 5)

	resp, body := postJSON(t, srv, "/api/orders",
		`{"customer_id": "`+customerID+`", "products": [{"id": "`+productID+`", "quantity": 3}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	items := body["products"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, productID, item["product_id"])
	assert.Equal(t, 9.99, item["price"])
	assert.Equal(t, float64(3), item["quantity"])

	// Stock is visibly decremented.
	resp, stored := getJSON(t, srv, "/api/products/"+productID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), stored["quantity"])

	// The order is retrievable.
	resp, fetched := getJSON(t, srv, "/api/orders/"+body["id"].(string))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, customerID, fetched["customer_id"])
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	srv := newTestServer(t)
	productID := createProduct(t, srv, "Widget", "9.99", 5)

	resp, body := postJSON(t, srv, "/api/orders",
		`{"customer_id": "ghost", "products": [{"id": "`+productID+`", "quantity": 1}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "customer not found")
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv)

	resp, body := postJSON(t, srv, "/api/orders",
		`{"customer_id": "`+customerID+`", "products": [{"id": "ghost", "quantity": 1}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "products not found")
}

func TestCreateOrder_OutOfStock(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv)
	productID := createProduct(t, srv, "Widget", "9.99", 2)

	resp, body := postJSON(t, srv, "/api/orders",
		`{"customer_id": "`+customerID+`", "products": [{"id": "`+productID+`", "quantity": 3}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "out of stock")

	// No decrement happened.
	_, stored := getJSON(t, srv, "/api/products/"+productID)
	assert.Equal(t, float64(2), stored["quantity"])
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv, "/api/orders", `{"customer_id": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "invalid JSON")
}

func TestGetOrder_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv, "/api/orders/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["message"], "order not found")
}
