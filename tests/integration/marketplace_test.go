//go:build integration

package integration

import (
	"math"
	"net/http"
	"testing"
)

func TestListSeededProducts(t *testing.T) {
	resp := doGet(t, "/api/products", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 5 {
		t.Fatalf("expected at least 5 seeded products, got %d", len(products))
	}

	for _, p := range products {
		if p.CarbonFootprint == nil {
			t.Errorf("product %s has no carbon footprint", p.ID)
		}
	}
}

func TestAuth_RequiredForCart(t *testing.T) {
	resp := doGet(t, "/api/cart", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	first := registerUser(t, "dup", "BUYER")

	resp := doPost(t, "/api/auth/register", "", map[string]string{
		"email":    first.Email,
		"username": first.Username + "2",
		"password": "integration",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusConflict {
		t.Errorf("error code: got %d, want %d", body.Code, http.StatusConflict)
	}
}

func TestListingFootprint(t *testing.T) {
	seller := registerUser(t, "seller", "SELLER")

	p := createListing(t, seller.Token, "Integration camera", 55.0, 0.5)
	if p.CarbonFootprint == nil {
		t.Fatal("listing has no carbon footprint")
	}

	// 0.5 kg of electronics at factor 45.2 minus the 15% transport share.
	want := 19.21
	if math.Abs(*p.CarbonFootprint-want) > 0.001 {
		t.Errorf("footprint: got %v, want %v", *p.CarbonFootprint, want)
	}
}

func TestCheckoutFlow(t *testing.T) {
	seller := registerUser(t, "seller", "SELLER")
	buyer := registerUser(t, "buyer", "BUYER")

	p := createListing(t, seller.Token, "Integration laptop", 200.0, 2.0)

	// Add to cart.
	resp := doPost(t, "/api/cart/items", buyer.Token, map[string]any{
		"productId": p.ID,
		"quantity":  1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
	}
	c := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(c.Items) != 1 {
		t.Fatalf("cart items: got %d, want 1", len(c.Items))
	}

	// Place the order.
	resp = doPost(t, "/api/orders", buyer.Token, map[string]string{
		"deliveryAddress": "1 Integration Way",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", resp.StatusCode)
	}
	orders := decodeJSON[[]orderResponse](t, resp)
	resp.Body.Close()
	if len(orders) != 1 {
		t.Fatalf("orders: got %d, want 1", len(orders))
	}
	o := orders[0]
	if o.Status != "PENDING" {
		t.Errorf("status: got %q, want PENDING", o.Status)
	}
	if math.Abs(o.TotalAmount-200.0) > 0.001 {
		t.Errorf("total: got %v, want 200", o.TotalAmount)
	}

	// The cart is empty afterwards.
	resp = doGet(t, "/api/cart", buyer.Token)
	c = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(c.Items) != 0 {
		t.Errorf("cart after checkout: got %d items, want 0", len(c.Items))
	}

	// Seller confirms, ships, delivers.
	for _, status := range []string{"CONFIRMED", "SHIPPED", "DELIVERED"} {
		resp = doRequest(t, http.MethodPut, "/api/orders/"+o.ID+"/status", seller.Token, map[string]string{
			"status": status,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("set status %s: expected 200, got %d", status, resp.StatusCode)
		}
		resp.Body.Close()
	}

	// Delivered orders cannot be cancelled.
	resp = doPost(t, "/api/orders/"+o.ID+"/cancel", buyer.Token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel delivered: expected 409, got %d", resp.StatusCode)
	}
}

func TestMultiSellerCheckoutSplits(t *testing.T) {
	sellerA := registerUser(t, "sellerA", "SELLER")
	sellerB := registerUser(t, "sellerB", "SELLER")
	buyer := registerUser(t, "buyer", "BUYER")

	pa := createListing(t, sellerA.Token, "Speaker A", 30.0, 1.0)
	pb := createListing(t, sellerB.Token, "Speaker B", 45.0, 1.0)

	for _, pid := range []string{pa.ID, pb.ID} {
		resp := doPost(t, "/api/cart/items", buyer.Token, map[string]any{
			"productId": pid,
			"quantity":  1,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := doPost(t, "/api/orders", buyer.Token, map[string]string{
		"deliveryAddress": "1 Integration Way",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", resp.StatusCode)
	}

	orders := decodeJSON[[]orderResponse](t, resp)
	if len(orders) != 2 {
		t.Fatalf("orders: got %d, want one per seller", len(orders))
	}

	total := orders[0].TotalAmount + orders[1].TotalAmount
	if math.Abs(total-75.0) > 0.001 {
		t.Errorf("combined total: got %v, want 75", total)
	}
}

func TestDashboardsAfterPurchase(t *testing.T) {
	seller := registerUser(t, "seller", "SELLER")
	buyer := registerUser(t, "buyer", "BUYER")

	p := createListing(t, seller.Token, "Tablet", 150.0, 0.6)

	resp := doPost(t, "/api/cart/items", buyer.Token, map[string]any{
		"productId": p.ID,
		"quantity":  1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doPost(t, "/api/orders", buyer.Token, map[string]string{
		"deliveryAddress": "1 Integration Way",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/dashboard/seller", seller.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seller dashboard: expected 200, got %d", resp.StatusCode)
	}
	sellerStats := decodeJSON[struct {
		TotalEarnings float64 `json:"totalEarnings"`
		TotalOrders   int     `json:"totalOrders"`
	}](t, resp)
	resp.Body.Close()
	if sellerStats.TotalOrders != 1 {
		t.Errorf("seller orders: got %d, want 1", sellerStats.TotalOrders)
	}

	resp = doGet(t, "/api/dashboard/buyer", buyer.Token)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("buyer dashboard: expected 200, got %d", resp.StatusCode)
	}
	buyerStats := decodeJSON[struct {
		TotalSpent      float64 `json:"totalSpent"`
		TreesEquivalent float64 `json:"treesEquivalent"`
	}](t, resp)
	if math.Abs(buyerStats.TotalSpent-150.0) > 0.001 {
		t.Errorf("total spent: got %v, want 150", buyerStats.TotalSpent)
	}
}
