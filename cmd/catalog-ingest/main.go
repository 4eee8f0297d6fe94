// Command catalog-ingest loads product catalogs from gzip-compressed CSV
// files into the database. Each line is `name,price,quantity`. Files are
// parsed concurrently; the last occurrence of a name wins. With
// --skip-existing, products already present in the database are left
// untouched: a bloom filter over existing names screens most lines cheaply
// and only filter hits pay for an exact lookup.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rmoura/storefront/internal/domain/product"
	"github.com/rmoura/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// catalogLine is one parsed CSV record. Later files override earlier ones
// for the same name, so line order within and across files matters.
type catalogLine struct {
	price    decimal.Decimal
	quantity int
}

func main() {
	var (
		dataGlob     string
		databaseURL  string
		skipExisting bool
	)

	flag.StringVar(&dataGlob, "data-glob", "data/catalog*.csv.gz", "glob of gzipped CSV catalog files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&skipExisting, "skip-existing", false, "leave products that already exist untouched")
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

	if err := run(ctx, dataGlob, databaseURL, skipExisting); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataGlob, databaseURL string, skipExisting bool) error {
	files, err := filepath.Glob(dataGlob)
	if err != nil {
		return errors.Wrapf(err, "expand glob %s", dataGlob)
	}
	if len(files) == 0 {
		return errors.Errorf("no files match %s", dataGlob)
	}

	slog.Info("parsing catalog files", slog.Int("files", len(files)))

	perFile, err := parseFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse catalog files")
	}

	// Merge in file order so later files win on name collisions.
	merged := make(map[string]catalogLine)
	for _, lines := range perFile {
		for name, line := range lines {
			merged[name] = line
		}
	}

	slog.Info("catalog parsed", slog.Int("distinct_products", len(merged)))

	if len(merged) == 0 {
		slog.Info("nothing to ingest")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)

	if skipExisting {
		merged, err = dropExisting(ctx, repo, merged)
		if err != nil {
			return errors.Wrap(err, "filter existing products")
		}
	}

	if err := writeProducts(ctx, repo, merged); err != nil {
		return errors.Wrap(err, "write products to database")
	}

	return nil
}

// parseFiles reads all catalog files concurrently. The returned slice is
// indexed like files, so callers can merge in deterministic file order.
func parseFiles(ctx context.Context, files []string) ([]map[string]catalogLine, error) {
	perFile := make([]map[string]catalogLine, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFile(ctx, i, f, perFile))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return perFile, nil
}

func parseFile(ctx context.Context, idx int, path string, perFile []map[string]catalogLine) func() error {
	return func() error {
		lines := make(map[string]catalogLine)
		var count, malformed uint64

		if err := streamGzFile(ctx, path, func(raw string) {
			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("lines", count),
				)
			}

			name, line, err := parseLine(raw)
			if err != nil {
				malformed++
				slog.Warn("skipping malformed line",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("line", count),
					slog.String("error", err.Error()),
				)
				return
			}
			lines[name] = line
		}); err != nil {
			return errors.Wrapf(err, "parse %s", path)
		}

		slog.Info("file parsed",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("lines", count),
			slog.Uint64("malformed", malformed),
			slog.Int("products", len(lines)),
		)

		perFile[idx] = lines
		return nil
	}
}

// parseLine splits a `name,price,quantity` record. The name must be
// non-empty, the price non-negative with at most two decimal places of
// significance, and the quantity a non-negative integer.
func parseLine(raw string) (string, catalogLine, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return "", catalogLine{}, errors.Errorf("expected 3 fields, got %d", len(parts))
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return "", catalogLine{}, errors.New("empty product name")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", catalogLine{}, errors.Wrap(err, "parse price")
	}
	if price.IsNegative() {
		return "", catalogLine{}, errors.New("negative price")
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return "", catalogLine{}, errors.Wrap(err, "parse quantity")
	}
	if quantity < 0 {
		return "", catalogLine{}, errors.New("negative quantity")
	}

	return name, catalogLine{price: price.Round(2), quantity: quantity}, nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// dropExisting removes products already in the database from the merged
// catalog. A bloom filter over existing names decides cheaply for most
// entries; filter hits fall back to an exact lookup because the filter can
// report false positives.
func dropExisting(
	ctx context.Context,
	repo *postgres.ProductRepository,
	merged map[string]catalogLine,
) (map[string]catalogLine, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list existing products")
	}

	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	for _, p := range existing {
		filter.AddString(p.Name)
	}

	fresh := make(map[string]catalogLine, len(merged))
	var skipped int
	for name, line := range merged {
		if filter.TestString(name) {
			_, err := repo.GetByName(ctx, name)
			switch {
			case err == nil:
				skipped++
				continue
			case errors.Is(err, product.ErrNotFound):
				// False positive, keep the entry.
			default:
				return nil, errors.Wrapf(err, "look up product %s", name)
			}
		}
		fresh[name] = line
	}

	slog.Info("existing products skipped",
		slog.Int("skipped", skipped),
		slog.Int("remaining", len(fresh)),
	)

	return fresh, nil
}

// writeProducts upserts all catalog entries into the database.
func writeProducts(ctx context.Context, repo *postgres.ProductRepository, merged map[string]catalogLine) error {
	slog.Info("writing products to database", slog.Int("count", len(merged)))

	var written int
	for name, line := range merged {
		if err := repo.Upsert(ctx, &product.Product{
			ID:       uuid.New().String(),
			Name:     name,
			Price:    line.price,
			Quantity: line.quantity,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", name)
		}

		written++
		if written%100 == 0 || written == len(merged) {
			slog.Info("write progress", slog.Int("written", written), slog.Int("total", len(merged)))
		}
	}

	return nil
}
