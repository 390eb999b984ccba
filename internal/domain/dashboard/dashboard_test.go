package dashboard

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecofinds/marketplace-api/internal/domain/order"
	"github.com/ecofinds/marketplace-api/internal/domain/product"
	"github.com/ecofinds/marketplace-api/internal/domain/user"
)

type mockOrderRepo struct {
	buyerOrders  []order.Order
	sellerOrders []order.Order
}

func (m *mockOrderRepo) CreatePlacement(_ context.Context, _ string, _ []*order.Order) error {
	return nil
}
func (m *mockOrderRepo) GetByID(_ context.Context, _ string) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (m *mockOrderRepo) ListByBuyer(_ context.Context, _ string) ([]order.Order, error) {
	return m.buyerOrders, nil
}
func (m *mockOrderRepo) ListBySeller(_ context.Context, _ string) ([]order.Order, error) {
	return m.sellerOrders, nil
}
func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ string, _ order.Status) error {
	return nil
}

type mockProductRepo struct {
	listings []product.Product
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }
func (m *mockProductRepo) Search(_ context.Context, _ string) ([]product.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) GetByID(_ context.Context, _ string) (*product.Product, error) {
	return nil, product.ErrNotFound
}
func (m *mockProductRepo) GetByIDs(_ context.Context, _ []string) ([]product.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) ListBySeller(_ context.Context, _ string) ([]product.Product, error) {
	return m.listings, nil
}
func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }

type mockUserRepo struct {
	byID map[string]*user.User
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}
func (m *mockUserRepo) GetByEmail(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (m *mockUserRepo) GetByUsername(_ context.Context, _ string) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (m *mockUserRepo) Create(_ context.Context, _ *user.User) error { return nil }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSellerDashboard(t *testing.T) {
	orders := &mockOrderRepo{sellerOrders: []order.Order{
		{ID: "o3", BuyerID: "b1", TotalAmount: dec("30.00"), TotalCarbonSaved: dec("5.00"), Status: order.StatusPending},
		{ID: "o2", BuyerID: "b2", TotalAmount: dec("20.00"), TotalCarbonSaved: dec("2.50"), Status: order.StatusDelivered},
		{ID: "o1", BuyerID: "b1", TotalAmount: dec("10.00"), TotalCarbonSaved: dec("1.25"), Status: order.StatusCancelled},
	}}
	products := &mockProductRepo{listings: []product.Product{{ID: "p1"}, {ID: "p2"}}}
	users := &mockUserRepo{byID: map[string]*user.User{
		"b1": {ID: "b1", FullName: "Ada Lovelace"},
		"b2": {ID: "b2", FullName: "Alan Turing"},
	}}

	svc := NewService(orders, products, users)
	stats, err := svc.Seller(context.Background(), "s1")
	require.NoError(t, err)

	assert.True(t, dec("60.00").Equal(stats.TotalEarnings), "earnings %s", stats.TotalEarnings)
	assert.True(t, dec("8.75").Equal(stats.TotalCarbonSaved))
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2, stats.ListedProducts)
	require.Len(t, stats.RecentOrders, 3)
	assert.Equal(t, "Ada Lovelace", stats.RecentOrders[0].BuyerName)
}

func TestSellerDashboard_RecentOrdersCapped(t *testing.T) {
	many := make([]order.Order, 8)
	for i := range many {
		many[i] = order.Order{ID: string(rune('a' + i)), TotalAmount: dec("1"), TotalCarbonSaved: dec("0")}
	}
	svc := NewService(&mockOrderRepo{sellerOrders: many}, &mockProductRepo{}, &mockUserRepo{})

	stats, err := svc.Seller(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, stats.RecentOrders, recentOrderLimit)
}

func TestBuyerDashboard(t *testing.T) {
	orders := &mockOrderRepo{buyerOrders: []order.Order{
		{TotalAmount: dec("15.00"), TotalCarbonSaved: dec("21.77")},
		{TotalAmount: dec("5.00"), TotalCarbonSaved: dec("0.00")},
	}}
	svc := NewService(orders, &mockProductRepo{}, &mockUserRepo{})

	stats, err := svc.Buyer(context.Background(), "b1")
	require.NoError(t, err)

	assert.True(t, dec("20.00").Equal(stats.TotalSpent))
	assert.True(t, dec("21.77").Equal(stats.TotalCarbonSaved))
	assert.True(t, dec("1.00").Equal(stats.TreesEquivalent), "trees %s", stats.TreesEquivalent)
	assert.True(t, dec("984").Equal(stats.WaterSavedLiters), "water %s", stats.WaterSavedLiters)
	assert.Equal(t, 2, stats.TotalOrders)
}
