// Package handler exposes the domain services over a JSON HTTP API.
package handler

import (
	"net/http"

	"github.com/rmoura/storefront/internal/domain/customer"
	"github.com/rmoura/storefront/internal/domain/order"
	"github.com/rmoura/storefront/internal/domain/product"
)

// Handler serves the storefront API, delegating business logic to the domain
// services.
type Handler struct {
	customers *customer.Service
	products  *product.Service
	orders    *order.Service
}

// NewHandler constructs a Handler with the required domain services.
func NewHandler(
	customers *customer.Service,
	products *product.Service,
	orders *order.Service,
) *Handler {
	return &Handler{
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// Routes registers all API routes on mux under /api.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/customers", h.CreateCustomer)
	mux.HandleFunc("GET /api/customers/{id}", h.GetCustomer)

	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("PUT /api/products/stock", h.UpdateStock)

	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
}
