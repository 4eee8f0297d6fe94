// Package memory implements the domain repositories with in-process maps.
// It backs unit and concurrency tests and the storage=memory dev mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rmoura/storefront/internal/domain/customer"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository is an in-memory customer.Repository.
type CustomerRepository struct {
	mu      sync.RWMutex
	byID    map[string]customer.Customer
	byEmail map[string]string
}

// NewCustomerRepository returns an empty in-memory customer repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		byID:    make(map[string]customer.Customer),
		byEmail: make(map[string]string),
	}
}

// Create stores a new customer, rejecting duplicate emails.
func (r *CustomerRepository) Create(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[c.Email]; exists {
		return customer.ErrDuplicateEmail
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	// Store a copy so later caller mutations do not leak into the repository.
	r.byID[c.ID] = *c
	r.byEmail[c.Email] = c.ID
	return nil
}

// GetByID returns a customer or customer.ErrNotFound.
func (r *CustomerRepository) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}

// GetByEmail returns a customer or customer.ErrNotFound.
func (r *CustomerRepository) GetByEmail(_ context.Context, email string) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, customer.ErrNotFound
	}
	c := r.byID[id]
	return &c, nil
}
