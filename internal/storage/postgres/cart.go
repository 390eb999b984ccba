package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecofinds/marketplace-api/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Lines returns the buyer's cart lines in the order they were added.
func (r *CartRepository) Lines(ctx context.Context, buyerID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT buyer_id, product_id, quantity, added_at
		FROM cart_lines WHERE buyer_id = $1
		ORDER BY added_at, product_id`, buyerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying cart lines")
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var line cart.Line
		if err := rows.Scan(&line.BuyerID, &line.ProductID, &line.Quantity, &line.AddedAt); err != nil {
			return nil, errors.Wrap(err, "scanning cart line")
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Upsert inserts a cart line or replaces the quantity of an existing one.
// The original added_at is kept so line ordering stays stable.
func (r *CartRepository) Upsert(ctx context.Context, line cart.Line) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_lines (buyer_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (buyer_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity`,
		line.BuyerID, line.ProductID, line.Quantity, line.AddedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "upserting cart line for product %q", line.ProductID)
	}
	return nil
}

// Remove deletes one product from the buyer's cart.
func (r *CartRepository) Remove(ctx context.Context, buyerID, productID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE buyer_id = $1 AND product_id = $2`,
		buyerID, productID,
	)
	if err != nil {
		return errors.Wrapf(err, "removing cart line for product %q", productID)
	}
	return nil
}

// Clear deletes every line in the buyer's cart.
func (r *CartRepository) Clear(ctx context.Context, buyerID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE buyer_id = $1`, buyerID); err != nil {
		return errors.Wrapf(err, "clearing cart for buyer %q", buyerID)
	}
	return nil
}
