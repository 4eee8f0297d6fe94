package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmoura/storefront/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (id, name, email) VALUES ($1, $2, $3)
		RETURNING created_at`

	getCustomerByIDSQL = `SELECT id, name, email, created_at
		FROM customers WHERE id = $1`

	getCustomerByEmailSQL = `SELECT id, name, email, created_at
		FROM customers WHERE email = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer. A duplicate email maps to
// customer.ErrDuplicateEmail.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	err := r.pool.QueryRow(ctx, createCustomerSQL, c.ID, c.Name, c.Email).Scan(&c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return customer.ErrDuplicateEmail
		}
		return fmt.Errorf("creating customer %q: %w", c.ID, err)
	}
	return nil
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByIDSQL, id)
}

// GetByEmail returns a single customer by its unique email address.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByEmailSQL, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, sql, arg string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting customer %q: %w", arg, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", arg, err)
	}
	return &c, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt)
	return c, err
}
