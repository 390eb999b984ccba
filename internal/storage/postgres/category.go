package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecofinds/marketplace-api/internal/domain/product"
)

var _ product.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements product.CategoryRepository backed by
// PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]product.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, carbon_factor
		FROM categories ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	defer rows.Close()

	var categories []product.Category
	for rows.Next() {
		var c product.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CarbonFactor); err != nil {
			return nil, errors.Wrap(err, "scanning category")
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByID returns a category by id, or product.ErrCategoryNotFound.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*product.Category, error) {
	var c product.Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, carbon_factor
		FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CarbonFactor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrCategoryNotFound
		}
		return nil, errors.Wrapf(err, "getting category %q", id)
	}
	return &c, nil
}
