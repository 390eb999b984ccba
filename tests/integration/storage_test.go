//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace-api/internal/domain/order"
	"github.com/ecofinds/marketplace-api/internal/storage/postgres"
)

// Unlike the HTTP tests, this file reaches into the storage layer directly:
// placement atomicity can only be proven by making the transaction fail
// halfway, which no API request can trigger.

// TestPlacementRollsBackOnFailure forces the second item insert of a
// placement to violate the product foreign key and then verifies nothing
// from the placement stuck: no order row, no item rows, and the buyer's
// cart exactly as it was.
func TestPlacementRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgresDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	exec := func(sql string, args ...any) {
		t.Helper()
		if _, err := pool.Exec(ctx, sql, args...); err != nil {
			t.Fatalf("exec %q: %v", sql, err)
		}
	}

	// Fixture rows under dedicated ids so the HTTP tests never see them.
	exec(`INSERT INTO users (id, email, username, password_hash, role)
	      VALUES ('rb-buyer', 'rb-buyer@example.com', 'rb-buyer', 'x', 'BUYER')
	      ON CONFLICT (id) DO NOTHING`)
	exec(`INSERT INTO users (id, email, username, password_hash, role)
	      VALUES ('rb-seller', 'rb-seller@example.com', 'rb-seller', 'x', 'SELLER')
	      ON CONFLICT (id) DO NOTHING`)
	exec(`INSERT INTO products (id, title, price, category_id, seller_id)
	      VALUES ('rb-product', 'rollback fixture', 40.00, 'cat-electronics', 'rb-seller')
	      ON CONFLICT (id) DO NOTHING`)
	exec(`DELETE FROM cart_lines WHERE buyer_id = 'rb-buyer'`)
	exec(`INSERT INTO cart_lines (buyer_id, product_id, quantity)
	      VALUES ('rb-buyer', 'rb-product', 2)`)

	price := decimal.RequireFromString("40.00")
	placed := &order.Order{
		ID:              "rb-order",
		BuyerID:         "rb-buyer",
		SellerID:        "rb-seller",
		TotalAmount:     price.Mul(decimal.NewFromInt(2)),
		Status:          order.StatusPending,
		DeliveryAddress: "12 Rollback Road",
		CreatedAt:       time.Now(),
		Items: []order.Item{
			{ID: "rb-item-1", OrderID: "rb-order", ProductID: "rb-product", Quantity: 1, Price: price},
			// This product id does not exist, so the batch fails after
			// the order row and the first item were already queued.
			{ID: "rb-item-2", OrderID: "rb-order", ProductID: "rb-no-such-product", Quantity: 1, Price: price},
		},
	}

	repo := postgres.NewOrderRepository(pool)
	if err := repo.CreatePlacement(ctx, "rb-buyer", []*order.Order{placed}); err == nil {
		t.Fatal("expected placement to fail on the missing product")
	}

	count := func(sql string, args ...any) int {
		t.Helper()
		var n int
		if err := pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
			t.Fatalf("count %q: %v", sql, err)
		}
		return n
	}

	if n := count(`SELECT count(*) FROM orders WHERE buyer_id = 'rb-buyer'`); n != 0 {
		t.Errorf("orders committed despite failure: %d", n)
	}
	if n := count(`SELECT count(*) FROM order_items WHERE order_id = 'rb-order'`); n != 0 {
		t.Errorf("order items committed despite failure: %d", n)
	}
	if n := count(`SELECT count(*) FROM cart_lines WHERE buyer_id = 'rb-buyer'`); n != 1 {
		t.Errorf("cart changed: %d lines, want 1", n)
	}

	var qty int
	if err := pool.QueryRow(ctx,
		`SELECT quantity FROM cart_lines WHERE buyer_id = 'rb-buyer' AND product_id = 'rb-product'`,
	).Scan(&qty); err != nil {
		t.Fatalf("cart line: %v", err)
	}
	if qty != 2 {
		t.Errorf("cart quantity changed: %d, want 2", qty)
	}
}
