package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rmoura/storefront/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, quantity, created_at, updated_at
		FROM products ORDER BY name`

	getProductByIDSQL = `SELECT id, name, price, quantity, created_at, updated_at
		FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, name, price, quantity, created_at, updated_at
		FROM products WHERE id = ANY($1)`

	getProductByNameSQL = `SELECT id, name, price, quantity, created_at, updated_at
		FROM products WHERE name = $1`

	createProductSQL = `INSERT INTO products (id, name, price, quantity) VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	setQuantitySQL = `UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1
		RETURNING id, name, price, quantity, created_at, updated_at`

	upsertProductSQL = `INSERT INTO products (id, name, price, quantity) VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET price = EXCLUDED.price, quantity = EXCLUDED.quantity, updated_at = now()`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

// GetByName returns a single product by its unique name.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*product.Product, error) {
	return r.getOne(ctx, getProductByNameSQL, name)
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new product. A duplicate name maps to
// product.ErrDuplicateName.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL, p.ID, p.Name, p.Price, p.Quantity).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrDuplicateName
		}
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// UpdateQuantities overwrites stock levels in one batch. Updates referencing
// ids that no longer exist are skipped, so the returned slice may be shorter
// than the input.
func (r *ProductRepository) UpdateQuantities(ctx context.Context, updates []product.QuantityUpdate) ([]product.Product, error) {
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(setQuantitySQL, u.ID, u.Quantity)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	updated := make([]product.Product, 0, len(updates))
	for _, u := range updates {
		rows, err := results.Query()
		if err != nil {
			return nil, fmt.Errorf("updating quantity for product %q: %w", u.ID, err)
		}
		p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Product vanished between lookup and update; skip it.
				continue
			}
			return nil, fmt.Errorf("updating quantity for product %q: %w", u.ID, err)
		}
		updated = append(updated, p)
	}
	return updated, nil
}

// Upsert inserts a product or, when the name is already registered, replaces
// its price and stock level. Used by the seed and catalog ingest tools.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	if _, err := r.pool.Exec(ctx, upsertProductSQL, p.ID, p.Name, p.Price, p.Quantity); err != nil {
		return fmt.Errorf("upserting product %q: %w", p.Name, err)
	}
	return nil
}

func (r *ProductRepository) getOne(ctx context.Context, sql, arg string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Name, &price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	p.Price = price
	return p, err
}
