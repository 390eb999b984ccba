// Package product holds the second-hand catalog: products, categories, and
// their repository contracts.
package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrCategoryNotFound is returned when a referenced category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// Condition rates the physical state of a listed item.
type Condition string

const (
	ConditionExcellent Condition = "EXCELLENT"
	ConditionGood      Condition = "GOOD"
	ConditionFair      Condition = "FAIR"
	ConditionPoor      Condition = "POOR"
)

// Status is the listing state of a product.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusSold     Status = "SOLD"
	StatusInactive Status = "INACTIVE"
)

// Product is a second-hand item listed for sale. CarbonFootprint is the
// estimated CO2 saved by one unit, computed at listing time; nil means it
// was never computed. Weight is in kg and may be absent.
type Product struct {
	ID              string
	Title           string
	Description     string
	Price           decimal.Decimal
	CategoryID      string
	CategoryName    string
	CategoryFactor  *decimal.Decimal
	SellerID        string
	ImageURL        string
	Condition       Condition
	Status          Status
	CarbonFootprint *decimal.Decimal
	Weight          *decimal.Decimal
	CreatedAt       time.Time
}

// Category groups products and carries an optional emission factor used as
// a fallback by the carbon model.
type Category struct {
	ID           string
	Name         string
	Description  string
	CarbonFactor *decimal.Decimal
}

// Repository defines catalog persistence. Reads join the category so the
// carbon model inputs travel with the product.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, keyword string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
}

// CategoryRepository defines category persistence.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
}
