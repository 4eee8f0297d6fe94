package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// ErrDuplicateEmail is returned when a customer with the given email address
// is already registered.
var ErrDuplicateEmail = errors.New("customer email already registered")

// Customer represents a registered buyer. Orders reference customers but do
// not own them.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
}
