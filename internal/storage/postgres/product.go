package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecofinds/marketplace-api/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
// Reads join the category so the carbon model inputs travel with each row.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productSelect = `
	SELECT p.id, p.title, p.description, p.price, p.category_id, c.name, c.carbon_factor,
	       p.seller_id, p.image_url, p.condition, p.status, p.carbon_footprint, p.weight, p.created_at
	FROM products p
	JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.CategoryID, &p.CategoryName, &p.CategoryFactor,
		&p.SellerID, &p.ImageURL, &p.Condition, &p.Status, &p.CarbonFootprint, &p.Weight, &p.CreatedAt,
	)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]product.Product, error) {
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning product")
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// List returns all products ordered by creation time, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	return collectProducts(rows)
}

// Search returns active products whose title or description contains the
// keyword, case-insensitive, newest first.
func (r *ProductRepository) Search(ctx context.Context, keyword string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+`
		WHERE p.status = 'ACTIVE'
		  AND (p.title ILIKE '%' || $1 || '%' OR p.description ILIKE '%' || $1 || '%')
		ORDER BY p.created_at DESC`, keyword)
	if err != nil {
		return nil, errors.Wrapf(err, "searching products %q", keyword)
	}
	return collectProducts(rows)
}

// GetByID returns a single product, or product.ErrNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %q", id)
	}
	return &p, nil
}

// GetByIDs returns all products matching the given ids in a single query.
// Missing ids are simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+` WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "getting products by ids")
	}
	return collectProducts(rows)
}

// ListBySeller returns a seller's listings, newest first.
func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+` WHERE p.seller_id = $1 ORDER BY p.created_at DESC`, sellerID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing products for seller %q", sellerID)
	}
	return collectProducts(rows)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, title, description, price, category_id, seller_id,
		                      image_url, condition, status, carbon_footprint, weight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Title, p.Description, p.Price, p.CategoryID, p.SellerID,
		p.ImageURL, p.Condition, p.Status, p.CarbonFootprint, p.Weight, p.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "creating product %q", p.ID)
	}
	return nil
}

// Update rewrites a product's mutable fields.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET title = $2, description = $3, price = $4, category_id = $5, image_url = $6,
		    condition = $7, status = $8, carbon_footprint = $9, weight = $10
		WHERE id = $1`,
		p.ID, p.Title, p.Description, p.Price, p.CategoryID, p.ImageURL,
		p.Condition, p.Status, p.CarbonFootprint, p.Weight,
	)
	if err != nil {
		return errors.Wrapf(err, "updating product %q", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}
