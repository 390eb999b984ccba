// Package dashboard aggregates order history into buyer and seller
// sustainability summaries.
package dashboard

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ecofinds/marketplace-api/internal/domain/carbon"
	"github.com/ecofinds/marketplace-api/internal/domain/order"
	"github.com/ecofinds/marketplace-api/internal/domain/product"
	"github.com/ecofinds/marketplace-api/internal/domain/user"
)

// recentOrderLimit caps the order preview on the seller dashboard.
const recentOrderLimit = 5

// RecentOrder is a compact order row for the seller dashboard.
type RecentOrder struct {
	OrderID     string
	BuyerName   string
	TotalAmount decimal.Decimal
	Status      order.Status
	CreatedAt   time.Time
}

// SellerStats summarizes a seller's sales and environmental impact.
type SellerStats struct {
	TotalEarnings    decimal.Decimal
	TotalCarbonSaved decimal.Decimal
	TotalOrders      int
	ListedProducts   int
	RecentOrders     []RecentOrder
}

// BuyerStats summarizes a buyer's purchases and environmental impact,
// including the carbon model's derived equivalents.
type BuyerStats struct {
	TotalSpent       decimal.Decimal
	TotalCarbonSaved decimal.Decimal
	TreesEquivalent  decimal.Decimal
	WaterSavedLiters decimal.Decimal
	TotalOrders      int
}

// Service assembles dashboards from the order, product, and user stores.
type Service struct {
	orders   order.Repository
	products product.Repository
	users    user.Repository
}

// NewService creates a dashboard Service.
func NewService(orders order.Repository, products product.Repository, users user.Repository) *Service {
	return &Service{orders: orders, products: products, users: users}
}

// Seller builds the seller dashboard: lifetime earnings and carbon savings
// over sold orders, current listing count, and the five most recent orders
// with buyer names resolved.
func (s *Service) Seller(ctx context.Context, sellerID string) (*SellerStats, error) {
	var (
		orders   []order.Order
		listings []product.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListBySeller(gctx, sellerID)
		return errors.Wrap(err, "list seller orders")
	})
	g.Go(func() error {
		var err error
		listings, err = s.products.ListBySeller(gctx, sellerID)
		return errors.Wrap(err, "list seller products")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &SellerStats{
		TotalEarnings:    decimal.Zero,
		TotalCarbonSaved: decimal.Zero,
		TotalOrders:      len(orders),
		ListedProducts:   len(listings),
	}
	for _, o := range orders {
		stats.TotalEarnings = stats.TotalEarnings.Add(o.TotalAmount)
		stats.TotalCarbonSaved = stats.TotalCarbonSaved.Add(o.TotalCarbonSaved)
	}

	recent := orders
	if len(recent) > recentOrderLimit {
		recent = recent[:recentOrderLimit]
	}
	stats.RecentOrders = make([]RecentOrder, 0, len(recent))
	for _, o := range recent {
		buyerName := ""
		if u, err := s.users.GetByID(ctx, o.BuyerID); err == nil {
			buyerName = u.FullName
		}
		stats.RecentOrders = append(stats.RecentOrders, RecentOrder{
			OrderID:     o.ID,
			BuyerName:   buyerName,
			TotalAmount: o.TotalAmount,
			Status:      o.Status,
			CreatedAt:   o.CreatedAt,
		})
	}

	return stats, nil
}

// Buyer builds the buyer dashboard: lifetime spend and carbon savings with
// tree and water equivalents.
func (s *Service) Buyer(ctx context.Context, buyerID string) (*BuyerStats, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, errors.Wrap(err, "list buyer orders")
	}

	stats := &BuyerStats{
		TotalSpent:       decimal.Zero,
		TotalCarbonSaved: decimal.Zero,
		TotalOrders:      len(orders),
	}
	for _, o := range orders {
		stats.TotalSpent = stats.TotalSpent.Add(o.TotalAmount)
		stats.TotalCarbonSaved = stats.TotalCarbonSaved.Add(o.TotalCarbonSaved)
	}

	stats.TreesEquivalent = carbon.TreesEquivalent(stats.TotalCarbonSaved)
	stats.WaterSavedLiters = carbon.WaterSavedLiters(stats.TotalCarbonSaved)

	return stats, nil
}
