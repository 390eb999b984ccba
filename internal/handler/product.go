package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ecofinds/marketplace-api/internal/domain/product"
)

// createProductRequest doubles as the update body. Status is honored only
// on update; new listings always start ACTIVE.
type createProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	CategoryID  string   `json:"categoryId"`
	ImageURL    string   `json:"imageUrl"`
	Condition   string   `json:"condition"`
	Status      string   `json:"status"`
	Weight      *float64 `json:"weight"`
}

type productResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	CategoryID      string    `json:"categoryId"`
	CategoryName    string    `json:"categoryName"`
	SellerID        string    `json:"sellerId"`
	ImageURL        string    `json:"imageUrl"`
	Condition       string    `json:"condition"`
	Status          string    `json:"status"`
	CarbonFootprint *float64  `json:"carbonFootprint"`
	Weight          *float64  `json:"weight"`
	CreatedAt       time.Time `json:"createdAt"`
}

type categoryResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CarbonFactor *float64 `json:"carbonFactor"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = h.projectProduct(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// searchProducts filters the active catalog by a keyword matched against
// titles and descriptions.
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Search(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = h.projectProduct(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// myProducts returns every listing owned by the caller, sold and inactive
// ones included.
func (h *Handler) myProducts(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	products, err := h.products.ListBySeller(r.Context(), caller.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = h.projectProduct(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.projectProduct(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var weight *decimal.Decimal
	if req.Weight != nil {
		d := decimal.NewFromFloat(*req.Weight)
		weight = &d
	}

	p, err := h.products.Create(r.Context(), product.CreateRequest{
		Title:       req.Title,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		CategoryID:  req.CategoryID,
		SellerID:    caller.ID,
		ImageURL:    req.ImageURL,
		Condition:   product.Condition(req.Condition),
		Weight:      weight,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.projectProduct(*p))
}

// updateProduct replaces a listing's fields with the request body, which
// recomputes the stored carbon footprint from the new category and weight.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req createProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var weight *decimal.Decimal
	if req.Weight != nil {
		d := decimal.NewFromFloat(*req.Weight)
		weight = &d
	}

	p, err := h.products.Update(r.Context(), product.UpdateRequest{
		ID:          chi.URLParam(r, "productID"),
		SellerID:    caller.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Condition:   product.Condition(req.Condition),
		Status:      product.Status(req.Status),
		Weight:      weight,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.projectProduct(*p))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{
			ID:           c.ID,
			Name:         c.Name,
			CarbonFactor: floatPtr(c.CarbonFactor),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) projectProduct(p product.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price.InexactFloat64(),
		CategoryID:      p.CategoryID,
		CategoryName:    p.CategoryName,
		SellerID:        p.SellerID,
		ImageURL:        h.imageURL(p.ImageURL),
		Condition:       string(p.Condition),
		Status:          string(p.Status),
		CarbonFootprint: floatPtr(p.CarbonFootprint),
		Weight:          floatPtr(p.Weight),
		CreatedAt:       p.CreatedAt,
	}
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
