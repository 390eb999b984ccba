// Package order implements the placement and lifecycle core: splitting a
// multi-seller cart into per-seller orders, computing monetary and carbon
// totals, and driving status transitions on persisted orders.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for lifecycle operations.
var (
	ErrNotFound       = errors.New("order not found")
	ErrUnauthorized   = errors.New("not authorized for this order")
	ErrSellerOnly     = errors.New("only the seller can update order status")
	ErrBlankAddress   = errors.New("delivery address required")
	ErrOrderDelivered = errors.New("cannot cancel a delivered order")
)

// InvalidTransitionError indicates a status change the state machine does
// not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return "invalid status transition " + string(e.From) + " -> " + string(e.To)
}

// Order is one buyer's purchase from exactly one seller. Totals are the
// exact decimal sums over Items and are never edited independently.
type Order struct {
	ID               string
	BuyerID          string
	SellerID         string
	TotalAmount      decimal.Decimal
	TotalCarbonSaved decimal.Decimal
	Status           Status
	DeliveryAddress  string
	Notes            string
	CreatedAt        time.Time
	Items            []Item
}

// Item is a single order line. Price is the product price at the time the
// order was placed and does not follow later catalog changes.
type Item struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Repository defines order persistence. CreatePlacement must write every
// order of the placement and clear the buyer's cart in a single
// transaction: either all of it becomes visible or none of it.
type Repository interface {
	CreatePlacement(ctx context.Context, buyerID string, orders []*Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// Publisher emits order events to interested consumers. Implementations
// are best effort: failures are logged, never surfaced to callers.
type Publisher interface {
	OrderPlaced(ctx context.Context, o *Order)
	OrderStatusChanged(ctx context.Context, o *Order)
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(context.Context, *Order)        {}
func (NopPublisher) OrderStatusChanged(context.Context, *Order) {}
