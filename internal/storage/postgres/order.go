package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecofinds/marketplace-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreatePlacement persists every order of a placement and clears the
// buyer's cart inside a single transaction. A failure anywhere rolls the
// whole placement back, leaving the cart untouched.
func (r *OrderRepository) CreatePlacement(ctx context.Context, buyerID string, orders []*order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, o := range orders {
			batch.Queue(`
				INSERT INTO orders (id, buyer_id, seller_id, total_amount, total_carbon_saved,
				                    status, delivery_address, notes, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				o.ID, o.BuyerID, o.SellerID, o.TotalAmount, o.TotalCarbonSaved,
				o.Status, o.DeliveryAddress, o.Notes, o.CreatedAt,
			)
			for _, item := range o.Items {
				batch.Queue(`
					INSERT INTO order_items (id, order_id, product_id, quantity, price)
					VALUES ($1, $2, $3, $4, $5)`,
					item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price,
				)
			}
		}
		batch.Queue(`DELETE FROM cart_lines WHERE buyer_id = $1`, buyerID)

		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return errors.Wrapf(err, "placing %d orders for buyer %q", len(orders), buyerID)
	}
	return nil
}

const orderSelect = `
	SELECT id, buyer_id, seller_id, total_amount, total_carbon_saved,
	       status, delivery_address, notes, created_at
	FROM orders`

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.BuyerID, &o.SellerID, &o.TotalAmount, &o.TotalCarbonSaved,
		&o.Status, &o.DeliveryAddress, &o.Notes, &o.CreatedAt,
	)
	return o, err
}

// GetByID returns one order with its items, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// ListByBuyer returns the buyer's orders with items, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	return r.list(ctx, orderSelect+` WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
}

// ListBySeller returns the seller's orders with items, newest first.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]order.Order, error) {
	return r.list(ctx, orderSelect+` WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
}

func (r *OrderRepository) list(ctx context.Context, query, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying orders")
	}
	defer rows.Close()

	var orders []order.Order
	ids := make([]string, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning order")
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// loadItems fetches items for a set of orders in one query, keyed by order id.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]order.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = ANY($1)
		ORDER BY order_id, id`, orderIDs)
	if err != nil {
		return nil, errors.Wrap(err, "querying order items")
	}
	defer rows.Close()

	items := make(map[string][]order.Item)
	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, errors.Wrap(err, "scanning order item")
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}

// UpdateStatus writes a new status for one order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return errors.Wrapf(err, "updating status of order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}
