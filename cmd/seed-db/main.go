package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecofinds/marketplace-api/internal/domain/carbon"
	"github.com/ecofinds/marketplace-api/internal/storage/postgres"
)

type categorySeed struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	CarbonFactor *decimal.Decimal `json:"carbonFactor"`
}

type userSeed struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type productSeed struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	CategoryID  string           `json:"categoryId"`
	SellerID    string           `json:"sellerId"`
	ImageURL    string           `json:"imageUrl"`
	Condition   string           `json:"condition"`
	Weight      *decimal.Decimal `json:"weight"`
}

type seedFile struct {
	Categories []categorySeed `json:"categories"`
	Users      []userSeed     `json:"users"`
	Products   []productSeed  `json:"products"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/marketplace.json", "path to seed JSON file")
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

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("reading seed file", slog.String("path", seedPath))

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

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

	if err := seedCategories(ctx, pool, seed.Categories); err != nil {
		return errors.Wrap(err, "seed categories")
	}
	if err := seedUsers(ctx, pool, seed.Users); err != nil {
		return errors.Wrap(err, "seed users")
	}
	if err := seedProducts(ctx, pool, seed); err != nil {
		return errors.Wrap(err, "seed products")
	}

	return nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool, categories []categorySeed) error {
	slog.Info("upserting categories", slog.Int("count", len(categories)))

	for _, c := range categories {
		_, err := pool.Exec(ctx, `
			INSERT INTO categories (id, name, description, carbon_factor)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				carbon_factor = EXCLUDED.carbon_factor`,
			c.ID, c.Name, c.Description, c.CarbonFactor,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}

		slog.Info("upserted category", slog.String("id", c.ID), slog.String("name", c.Name))
	}

	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, users []userSeed) error {
	slog.Info("upserting users", slog.Int("count", len(users)))

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrapf(err, "hash password for %s", u.ID)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, email, username, full_name, password_hash, role)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				email = EXCLUDED.email,
				username = EXCLUDED.username,
				full_name = EXCLUDED.full_name,
				password_hash = EXCLUDED.password_hash,
				role = EXCLUDED.role`,
			u.ID, u.Email, u.Username, u.FullName, string(hash), u.Role,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert user %s", u.ID)
		}

		slog.Info("upserted user", slog.String("id", u.ID), slog.String("username", u.Username))
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, seed seedFile) error {
	slog.Info("upserting products", slog.Int("count", len(seed.Products)))

	categories := make(map[string]categorySeed, len(seed.Categories))
	for _, c := range seed.Categories {
		categories[c.ID] = c
	}

	for _, p := range seed.Products {
		// Footprints are computed at seed time, the same way the API
		// computes them at listing time.
		var footprint decimal.Decimal
		if c, ok := categories[p.CategoryID]; ok {
			footprint = carbon.Savings(p.Weight, &carbon.Category{Name: c.Name, Factor: c.CarbonFactor})
		} else {
			footprint = carbon.Savings(p.Weight, nil)
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, title, description, price, category_id, seller_id,
				image_url, condition, carbon_footprint, weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				category_id = EXCLUDED.category_id,
				seller_id = EXCLUDED.seller_id,
				image_url = EXCLUDED.image_url,
				condition = EXCLUDED.condition,
				carbon_footprint = EXCLUDED.carbon_footprint,
				weight = EXCLUDED.weight`,
			p.ID, p.Title, p.Description, p.Price, p.CategoryID, p.SellerID,
			p.ImageURL, p.Condition, footprint, p.Weight,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("title", p.Title))
	}

	return nil
}
