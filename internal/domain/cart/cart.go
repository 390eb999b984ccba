// Package cart holds a buyer's pre-checkout selections. Lines are
// ephemeral: placing an order consumes the whole cart.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart operations.
var (
	ErrEmpty         = errors.New("cart is empty")
	ErrLineNotFound  = errors.New("item not found in cart")
	ErrOwnProduct    = errors.New("cannot add your own product to cart")
	ErrBadQuantity   = errors.New("quantity must be greater than 0")
	ErrProductIDZero = errors.New("product id required")
)

// Line is one (product, quantity) selection in a buyer's cart.
type Line struct {
	BuyerID   string
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// Repository defines cart persistence. Clear must also be callable inside
// the order placement transaction; the order store owns that path.
type Repository interface {
	Lines(ctx context.Context, buyerID string) ([]Line, error)
	Upsert(ctx context.Context, line Line) error
	Remove(ctx context.Context, buyerID, productID string) error
	Clear(ctx context.Context, buyerID string) error
}
