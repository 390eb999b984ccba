package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace-api/internal/domain/cart"
	"github.com/ecofinds/marketplace-api/internal/domain/product"
	"github.com/ecofinds/marketplace-api/internal/domain/user"
)

// PlaceRequest holds the input for placing an order from the buyer's cart.
type PlaceRequest struct {
	BuyerID         string
	DeliveryAddress string
	Notes           string
}

// Service encapsulates order placement and lifecycle business logic.
type Service struct {
	carts    cart.Repository
	products product.Repository
	orders   Repository
	events   Publisher
	now      func() time.Time
}

// NewService creates an order Service with the required domain
// dependencies. A nil publisher disables event emission.
func NewService(
	carts cart.Repository,
	products product.Repository,
	orders Repository,
	events Publisher,
) *Service {
	if events == nil {
		events = NopPublisher{}
	}
	return &Service{
		carts:    carts,
		products: products,
		orders:   orders,
		events:   events,
		now:      time.Now,
	}
}

// Place reads the buyer's cart, splits it into one PENDING order per
// distinct seller, computes each order's monetary and carbon totals, and
// persists the whole batch atomically together with clearing the cart.
// It returns every created order, in the order sellers first appear in
// the cart.
func (s *Service) Place(ctx context.Context, req PlaceRequest) ([]*Order, error) {
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, ErrBlankAddress
	}

	lines, err := s.carts.Lines(ctx, req.BuyerID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart lines")
	}
	if len(lines) == 0 {
		return nil, cart.ErrEmpty
	}

	// Batch fetch all products in a single query.
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}
	for _, line := range lines {
		if _, ok := productMap[line.ProductID]; !ok {
			return nil, errors.Wrapf(product.ErrNotFound, "product %s", line.ProductID)
		}
	}

	// Stable partition by seller: sellers keep the order they first
	// appear in the cart, lines keep cart order within each partition.
	sellerIDs := make([]string, 0)
	bySeller := make(map[string][]cart.Line)
	for _, line := range lines {
		sellerID := productMap[line.ProductID].SellerID
		if _, ok := bySeller[sellerID]; !ok {
			sellerIDs = append(sellerIDs, sellerID)
		}
		bySeller[sellerID] = append(bySeller[sellerID], line)
	}

	now := s.now()
	orders := make([]*Order, 0, len(sellerIDs))
	for _, sellerID := range sellerIDs {
		o := s.buildSellerOrder(req, sellerID, bySeller[sellerID], productMap, now)
		orders = append(orders, o)
	}

	// All orders plus the cart wipe commit as one transaction; any
	// failure leaves the cart intact and no order visible.
	if err := s.orders.CreatePlacement(ctx, req.BuyerID, orders); err != nil {
		return nil, errors.Wrap(err, "create placement")
	}

	for _, o := range orders {
		s.events.OrderPlaced(ctx, o)
	}

	return orders, nil
}

// buildSellerOrder assembles one pending order for a single seller
// partition, copying current prices into the items and summing totals.
func (s *Service) buildSellerOrder(
	req PlaceRequest,
	sellerID string,
	lines []cart.Line,
	products map[string]product.Product,
	now time.Time,
) *Order {
	o := &Order{
		ID:               uuid.New().String(),
		BuyerID:          req.BuyerID,
		SellerID:         sellerID,
		Status:           StatusPending,
		DeliveryAddress:  req.DeliveryAddress,
		Notes:            req.Notes,
		CreatedAt:        now,
		TotalAmount:      decimal.Zero,
		TotalCarbonSaved: decimal.Zero,
		Items:            make([]Item, 0, len(lines)),
	}

	for _, line := range lines {
		p := products[line.ProductID]
		qty := decimal.NewFromInt(int64(line.Quantity))

		o.Items = append(o.Items, Item{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ProductID: p.ID,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})

		o.TotalAmount = o.TotalAmount.Add(p.Price.Mul(qty))
		// A footprint that was never computed contributes nothing.
		if p.CarbonFootprint != nil {
			o.TotalCarbonSaved = o.TotalCarbonSaved.Add(p.CarbonFootprint.Mul(qty))
		}
	}

	return o
}

// Get returns an order if the requester is its buyer or its seller.
func (s *Service) Get(ctx context.Context, orderID, requesterID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}

	if o.BuyerID != requesterID && o.SellerID != requesterID {
		return nil, ErrUnauthorized
	}
	return o, nil
}

// UpdateStatus moves an order to a new status. Only the order's seller may
// call it, and the change must be allowed by the transition table.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next Status, requesterID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}

	if o.SellerID != requesterID {
		return nil, ErrSellerOnly
	}

	if !o.Status.CanTransition(next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}

	if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = next

	s.events.OrderStatusChanged(ctx, o)
	return o, nil
}

// Cancel marks an order CANCELLED. Both the buyer and the seller may
// cancel. Delivered orders cannot be cancelled; cancelling an already
// cancelled order is a silent no-op.
func (s *Service) Cancel(ctx context.Context, orderID, requesterID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "get order %s", orderID)
	}

	if o.BuyerID != requesterID && o.SellerID != requesterID {
		return ErrUnauthorized
	}
	if o.Status == StatusDelivered {
		return ErrOrderDelivered
	}
	if o.Status == StatusCancelled {
		return nil
	}

	if err := s.orders.UpdateStatus(ctx, orderID, StatusCancelled); err != nil {
		return errors.Wrap(err, "update status")
	}
	o.Status = StatusCancelled

	s.events.OrderStatusChanged(ctx, o)
	return nil
}

// List returns a page of the user's orders, newest first. Sellers see
// orders they sold; everyone else sees orders they bought. The page is
// sliced in memory from a single newest-first read, so boundaries are
// only stable within one call.
func (s *Service) List(ctx context.Context, userID string, role user.Role, page, size int) ([]Order, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	var (
		orders []Order
		err    error
	)
	if role == user.RoleSeller {
		orders, err = s.orders.ListBySeller(ctx, userID)
	} else {
		orders, err = s.orders.ListByBuyer(ctx, userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	start := page * size
	if start >= len(orders) {
		return []Order{}, nil
	}
	end := start + size
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end], nil
}
