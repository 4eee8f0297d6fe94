// Command seed-db loads customers and products from JSON files into the
// database, creating the schema first. Products are upserted by name so the
// tool is safe to re-run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmoura/storefront/internal/domain/customer"
	"github.com/rmoura/storefront/internal/domain/product"
	"github.com/rmoura/storefront/internal/storage/postgres"
)

type customerJSON struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type productJSON struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func main() {
	var (
		databaseURL   string
		customersFile string
		productsFile  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&customersFile, "customers-file", "db/seed/customers.json", "path to customers JSON file")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, customersFile, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, customersFile, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCustomers(ctx, postgres.NewCustomerRepository(pool), customersFile); err != nil {
		return errors.Wrap(err, "seed customers")
	}
	if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	return nil
}

func seedCustomers(ctx context.Context, repo *postgres.CustomerRepository, path string) error {
	slog.Info("reading customers file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read customers file")
	}

	var customers []customerJSON
	if err := json.Unmarshal(data, &customers); err != nil {
		return errors.Wrap(err, "parse customers JSON")
	}

	for _, c := range customers {
		err := repo.Create(ctx, &customer.Customer{
			ID:    uuid.New().String(),
			Name:  c.Name,
			Email: c.Email,
		})
		switch {
		case errors.Is(err, customer.ErrDuplicateEmail):
			slog.Info("customer already seeded", slog.String("email", c.Email))
		case err != nil:
			return errors.Wrapf(err, "create customer %s", c.Email)
		default:
			slog.Info("created customer", slog.String("email", c.Email))
		}
	}
	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, &product.Product{
			ID:       uuid.New().String(),
			Name:     p.Name,
			Price:    p.Price.Round(2),
			Quantity: p.Quantity,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Name)
		}

		slog.Info("upserted product", slog.String("name", p.Name))
	}
	return nil
}
