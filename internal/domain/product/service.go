package product

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace-api/internal/domain/carbon"
)

// Sentinel errors for listing validation.
var (
	ErrBlankTitle           = errors.New("title required")
	ErrInvalidPrice         = errors.New("price must be greater than 0")
	ErrNegativeWeight       = errors.New("weight must not be negative")
	ErrInvalidCategory      = errors.New("category required")
	ErrBlankKeyword         = errors.New("search keyword required")
	ErrUnknownListingStatus = errors.New("unknown listing status")
)

// ErrNotOwner is returned when someone other than the listing's seller
// tries to modify it.
var ErrNotOwner = errors.New("only the seller may modify this product")

// CreateRequest holds the input for listing a product.
type CreateRequest struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	SellerID    string
	ImageURL    string
	Condition   Condition
	Weight      *decimal.Decimal
}

// UpdateRequest holds the input for revising a listing. All listed fields
// replace the stored values; SellerID identifies the caller, not a new
// owner.
type UpdateRequest struct {
	ID          string
	SellerID    string
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	ImageURL    string
	Condition   Condition
	Status      Status
	Weight      *decimal.Decimal
}

// Service encapsulates catalog business logic. The carbon footprint of a
// listing is computed once here, at listing time, and stored with the
// product.
type Service struct {
	products   Repository
	categories CategoryRepository
	now        func() time.Time
}

// NewService creates a catalog Service.
func NewService(products Repository, categories CategoryRepository) *Service {
	return &Service{
		products:   products,
		categories: categories,
		now:        time.Now,
	}
}

// Create validates the listing, precomputes its carbon footprint from the
// category and weight, and persists it as an ACTIVE product.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Product, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrBlankTitle
	}
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if req.Weight != nil && req.Weight.IsNegative() {
		return nil, ErrNegativeWeight
	}
	if req.CategoryID == "" {
		return nil, ErrInvalidCategory
	}

	cat, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, errors.Wrap(err, "get category")
	}

	footprint := carbon.Savings(req.Weight, &carbon.Category{
		Name:   cat.Name,
		Factor: cat.CarbonFactor,
	})

	condition := req.Condition
	if condition == "" {
		condition = ConditionGood
	}

	p := &Product{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		CategoryID:      cat.ID,
		CategoryName:    cat.Name,
		CategoryFactor:  cat.CarbonFactor,
		SellerID:        req.SellerID,
		ImageURL:        req.ImageURL,
		Condition:       condition,
		Status:          StatusActive,
		CarbonFootprint: &footprint,
		Weight:          req.Weight,
		CreatedAt:       s.now(),
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}

	return p, nil
}

// Update revises an existing listing and recomputes its carbon footprint
// from the new category and weight. Only the seller who listed the product
// may update it; the listing status is left untouched.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Product, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrBlankTitle
	}
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if req.Weight != nil && req.Weight.IsNegative() {
		return nil, ErrNegativeWeight
	}
	if req.CategoryID == "" {
		return nil, ErrInvalidCategory
	}
	if req.Status != "" {
		switch req.Status {
		case StatusActive, StatusSold, StatusInactive:
		default:
			return nil, ErrUnknownListingStatus
		}
	}

	p, err := s.products.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", req.ID)
	}
	if p.SellerID != req.SellerID {
		return nil, ErrNotOwner
	}

	cat, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, errors.Wrap(err, "get category")
	}

	footprint := carbon.Savings(req.Weight, &carbon.Category{
		Name:   cat.Name,
		Factor: cat.CarbonFactor,
	})

	p.Title = req.Title
	p.Description = req.Description
	p.Price = req.Price
	p.CategoryID = cat.ID
	p.CategoryName = cat.Name
	p.CategoryFactor = cat.CarbonFactor
	p.ImageURL = req.ImageURL
	if req.Condition != "" {
		p.Condition = req.Condition
	}
	if req.Status != "" {
		p.Status = req.Status
	}
	p.CarbonFootprint = &footprint
	p.Weight = req.Weight

	if err := s.products.Update(ctx, p); err != nil {
		return nil, errors.Wrapf(err, "update product %s", req.ID)
	}

	return p, nil
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

// Search returns active products whose title or description matches the
// keyword, newest first.
func (s *Service) Search(ctx context.Context, keyword string) ([]Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrBlankKeyword
	}
	products, err := s.products.Search(ctx, keyword)
	if err != nil {
		return nil, errors.Wrapf(err, "search products %q", keyword)
	}
	return products, nil
}

// ListBySeller returns every listing owned by the given seller, regardless
// of status.
func (s *Service) ListBySeller(ctx context.Context, sellerID string) ([]Product, error) {
	products, err := s.products.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, errors.Wrapf(err, "list products of seller %s", sellerID)
	}
	return products, nil
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	return p, nil
}
