// Package handler exposes the marketplace over HTTP: JSON codecs, routing,
// bearer-token identity, and projection of domain aggregates into response
// shapes.
package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/ecofinds/marketplace-api/internal/domain/cart"
	"github.com/ecofinds/marketplace-api/internal/domain/dashboard"
	"github.com/ecofinds/marketplace-api/internal/domain/order"
	"github.com/ecofinds/marketplace-api/internal/domain/product"
	"github.com/ecofinds/marketplace-api/internal/domain/user"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
	// JWTSecret signs and verifies bearer tokens.
	JWTSecret []byte
}

// Handler wires the domain services to HTTP routes, delegating all
// business logic to the services.
type Handler struct {
	users      *user.Service
	products   *product.Service
	carts      *cart.Service
	orders     *order.Service
	dashboards *dashboard.Service

	userRepo     user.Repository
	productRepo  product.Repository
	categoryRepo product.CategoryRepository

	imageBaseURL string
	tokens       *tokenIssuer
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	users *user.Service,
	products *product.Service,
	carts *cart.Service,
	orders *order.Service,
	dashboards *dashboard.Service,
	userRepo user.Repository,
	productRepo product.Repository,
	categoryRepo product.CategoryRepository,
) *Handler {
	return &Handler{
		users:        users,
		products:     products,
		carts:        carts,
		orders:       orders,
		dashboards:   dashboards,
		userRepo:     userRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		imageBaseURL: cfg.ImageBaseURL,
		tokens:       newTokenIssuer(cfg.JWTSecret),
	}
}

// Routes builds the API router. Public routes cover authentication and
// catalog reads; everything else requires a bearer token.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)

	r.Get("/products", h.listProducts)
	r.Get("/products/search", h.searchProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Get("/categories", h.listCategories)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Get("/users/profile", h.profile)

		r.Post("/products", h.createProduct)
		r.Get("/products/mine", h.myProducts)
		r.Put("/products/{productID}", h.updateProduct)

		r.Get("/cart", h.getCart)
		r.Post("/cart/items", h.addCartItem)
		r.Put("/cart/items/{productID}", h.updateCartItem)
		r.Delete("/cart/items/{productID}", h.removeCartItem)

		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{orderID}", h.getOrder)
		r.Put("/orders/{orderID}/status", h.updateOrderStatus)
		r.Post("/orders/{orderID}/cancel", h.cancelOrder)

		r.Get("/dashboard/buyer", h.buyerDashboard)
		r.Get("/dashboard/seller", h.sellerDashboard)
	})

	return r
}

// imageURL prefixes relative image paths with the configured base URL.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" {
		return path
	}
	return h.imageBaseURL + path
}
