package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace-api/internal/domain/product"
)

// Item is a cart line joined with its current product data for display.
type Item struct {
	ProductID       string
	Title           string
	Price           decimal.Decimal
	Quantity        int
	ImageURL        string
	CarbonFootprint *decimal.Decimal
}

// Snapshot is the buyer's cart with computed monetary and carbon totals.
type Snapshot struct {
	BuyerID          string
	Items            []Item
	TotalAmount      decimal.Decimal
	TotalCarbonSaved decimal.Decimal
}

// Service encapsulates cart manipulation and snapshot assembly.
type Service struct {
	carts    Repository
	products product.Repository
	now      func() time.Time
}

// NewService creates a cart Service.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{carts: carts, products: products, now: time.Now}
}

// Get assembles the buyer's cart snapshot with per-line product data and
// running totals. A product footprint that was never computed contributes
// zero to the carbon total.
func (s *Service) Get(ctx context.Context, buyerID string) (*Snapshot, error) {
	lines, err := s.carts.Lines(ctx, buyerID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart lines")
	}

	snap := &Snapshot{
		BuyerID:          buyerID,
		Items:            make([]Item, 0, len(lines)),
		TotalAmount:      decimal.Zero,
		TotalCarbonSaved: decimal.Zero,
	}

	for _, line := range lines {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				// Listing was removed after it entered the cart.
				continue
			}
			return nil, errors.Wrapf(err, "get product %s", line.ProductID)
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		snap.TotalAmount = snap.TotalAmount.Add(p.Price.Mul(qty))
		if p.CarbonFootprint != nil {
			snap.TotalCarbonSaved = snap.TotalCarbonSaved.Add(p.CarbonFootprint.Mul(qty))
		}

		snap.Items = append(snap.Items, Item{
			ProductID:       p.ID,
			Title:           p.Title,
			Price:           p.Price,
			Quantity:        line.Quantity,
			ImageURL:        p.ImageURL,
			CarbonFootprint: p.CarbonFootprint,
		})
	}

	return snap, nil
}

// Add puts a product into the buyer's cart. Adding a product already in
// the cart accumulates its quantity. Sellers cannot add their own
// listings.
func (s *Service) Add(ctx context.Context, buyerID, productID string, quantity int) error {
	if productID == "" {
		return ErrProductIDZero
	}
	if quantity <= 0 {
		return ErrBadQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.ErrNotFound
		}
		return errors.Wrapf(err, "get product %s", productID)
	}
	if p.SellerID == buyerID {
		return ErrOwnProduct
	}

	lines, err := s.carts.Lines(ctx, buyerID)
	if err != nil {
		return errors.Wrap(err, "get cart lines")
	}
	for _, line := range lines {
		if line.ProductID == productID {
			quantity += line.Quantity
			break
		}
	}

	err = s.carts.Upsert(ctx, Line{
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   s.now(),
	})
	if err != nil {
		return errors.Wrap(err, "upsert cart line")
	}
	return nil
}

// Update sets the quantity of a cart line. A quantity of zero or less
// removes the line.
func (s *Service) Update(ctx context.Context, buyerID, productID string, quantity int) error {
	lines, err := s.carts.Lines(ctx, buyerID)
	if err != nil {
		return errors.Wrap(err, "get cart lines")
	}

	var found bool
	for _, line := range lines {
		if line.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return ErrLineNotFound
	}

	if quantity <= 0 {
		if err := s.carts.Remove(ctx, buyerID, productID); err != nil {
			return errors.Wrap(err, "remove cart line")
		}
		return nil
	}

	err = s.carts.Upsert(ctx, Line{
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   s.now(),
	})
	if err != nil {
		return errors.Wrap(err, "upsert cart line")
	}
	return nil
}

// Remove deletes one product from the buyer's cart.
func (s *Service) Remove(ctx context.Context, buyerID, productID string) error {
	if err := s.carts.Remove(ctx, buyerID, productID); err != nil {
		return errors.Wrap(err, "remove cart line")
	}
	return nil
}
