// Command listing-ingest bulk-imports product listings from gzipped CSV
// partner feeds. Feeds overlap: the same listing often appears in several
// files, so external IDs are deduplicated with a bloom filter before
// hitting the database, and inserts use ON CONFLICT DO NOTHING as the
// exact backstop for bloom false negatives across runs.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ecofinds/marketplace-api/internal/domain/carbon"
	"github.com/ecofinds/marketplace-api/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	batchSize     = 500
	progressEvery = 100_000
)

// listing is one parsed feed row.
type listing struct {
	externalID  string
	title       string
	description string
	price       decimal.Decimal
	category    string
	condition   string
	weight      *decimal.Decimal
	imageURL    string
}

func main() {
	var (
		databaseURL string
		sellerID    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&sellerID, "seller-id", "", "user id that owns the imported listings")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if sellerID == "" {
		slog.Error("seller id is required: set --seller-id")
		os.Exit(1)
	}
	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no feed files given: pass one or more .csv.gz paths")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, sellerID, files); err != nil {
		slog.Error("listing ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("listing ingest completed successfully")
}

func run(ctx context.Context, databaseURL, sellerID string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	categories, err := loadCategories(ctx, pool)
	if err != nil {
		return errors.Wrap(err, "load categories")
	}

	// Feed files are parsed concurrently; a single writer goroutine owns
	// the bloom filter and the database batches.
	rows := make(chan listing, batchSize)

	g, ctx := errgroup.WithContext(ctx)

	var parseWG sync.WaitGroup
	for i, f := range files {
		parseWG.Add(1)
		g.Go(parseFeedFile(ctx, &parseWG, i, f, rows))
	}
	go func() {
		parseWG.Wait()
		close(rows)
	}()

	g.Go(func() error {
		return writeListings(ctx, pool, sellerID, categories, rows)
	})

	return g.Wait()
}

// category holds the inputs the carbon model needs per category.
type category struct {
	id     string
	factor *decimal.Decimal
}

func loadCategories(ctx context.Context, pool *pgxpool.Pool) (map[string]category, error) {
	rows, err := pool.Query(ctx, `SELECT id, name, carbon_factor FROM categories`)
	if err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	defer rows.Close()

	categories := make(map[string]category)
	for rows.Next() {
		var (
			id, name string
			factor   *decimal.Decimal
		)
		if err := rows.Scan(&id, &name, &factor); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		categories[strings.ToLower(name)] = category{id: id, factor: factor}
	}
	return categories, rows.Err()
}

func parseFeedFile(ctx context.Context, wg *sync.WaitGroup, idx int, path string, out chan<- listing) func() error {
	return func() error {
		defer wg.Done()

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

		r := csv.NewReader(bufio.NewReader(gz))
		r.FieldsPerRecord = 8

		var count uint64
		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}

			l, err := parseRecord(record)
			if err != nil {
				// Bad feed rows are skipped, not fatal.
				slog.Warn("skipping malformed row",
					slog.Int("file", idx+1),
					slog.String("error", err.Error()),
				)
				continue
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.Int("file", idx+1),
					slog.Uint64("rows", count),
				)
			}

			select {
			case out <- l:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		slog.Info("parse complete", slog.Int("file", idx+1), slog.Uint64("rows", count))
		return nil
	}
}

// parseRecord maps a CSV row to a listing. Columns:
// external_id,title,description,price,category,condition,weight,image_url
func parseRecord(record []string) (listing, error) {
	externalID := strings.TrimSpace(record[0])
	if externalID == "" {
		return listing{}, errors.New("empty external id")
	}
	title := strings.TrimSpace(record[1])
	if title == "" {
		return listing{}, errors.New("empty title")
	}

	price, err := decimal.NewFromString(record[3])
	if err != nil || !price.IsPositive() {
		return listing{}, errors.Errorf("bad price %q", record[3])
	}

	var weight *decimal.Decimal
	if record[6] != "" {
		w, err := decimal.NewFromString(record[6])
		if err != nil || w.IsNegative() {
			return listing{}, errors.Errorf("bad weight %q", record[6])
		}
		weight = &w
	}

	condition := strings.ToUpper(strings.TrimSpace(record[5]))
	switch condition {
	case "EXCELLENT", "GOOD", "FAIR", "POOR":
	case "":
		condition = "GOOD"
	default:
		return listing{}, errors.Errorf("bad condition %q", record[5])
	}

	return listing{
		externalID:  externalID,
		title:       title,
		description: record[2],
		price:       price,
		category:    strings.ToLower(strings.TrimSpace(record[4])),
		condition:   condition,
		weight:      weight,
		imageURL:    record[7],
	}, nil
}

// writeListings consumes parsed rows, drops duplicates, and batch-inserts
// the rest. Cross-feed dedupe uses a bloom filter so memory stays bounded
// on feeds with tens of millions of rows; the 0.1% false positive rate
// means a rare new listing is skipped, which beats holding every external
// id in an exact set. Rows already imported by a previous run are caught
// by ON CONFLICT DO NOTHING.
func writeListings(
	ctx context.Context,
	pool *pgxpool.Pool,
	sellerID string,
	categories map[string]category,
	rows <-chan listing,
) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	batch := &pgx.Batch{}
	var total, skipped, unknownCategory uint64

	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "flush batch")
		}
		batch = &pgx.Batch{}
		return nil
	}

	for l := range rows {
		if seen.TestString(l.externalID) {
			skipped++
			continue
		}
		seen.AddString(l.externalID)

		cat, ok := categories[l.category]
		if !ok {
			unknownCategory++
			continue
		}

		footprint := carbon.Savings(l.weight, &carbon.Category{Name: l.category, Factor: cat.factor})

		batch.Queue(`
			INSERT INTO products (id, title, description, price, category_id, seller_id,
				image_url, condition, carbon_footprint, weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING`,
			fmt.Sprintf("feed-%s", l.externalID), l.title, l.description, l.price,
			cat.id, sellerID, l.imageURL, l.condition, footprint, l.weight,
		)

		total++
		if batch.Len() >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	slog.Info("listings written",
		slog.Uint64("inserted", total),
		slog.Uint64("duplicates", skipped),
		slog.Uint64("unknown_category", unknownCategory),
	)
	return nil
}
