package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecofinds/marketplace-api/internal/domain/order"
	"github.com/ecofinds/marketplace-api/internal/domain/user"
)

// placeOrderRequest is the JSON body for checking out the caller's cart.
type placeOrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress"`
	Notes           string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// orderResponse is the external order shape. Buyer/seller names, product
// titles, images, and carbon footprints reflect current data; item prices
// are the snapshot taken at order time.
type orderResponse struct {
	ID               string              `json:"id"`
	BuyerName        string              `json:"buyerName"`
	SellerName       string              `json:"sellerName"`
	TotalAmount      float64             `json:"totalAmount"`
	TotalCarbonSaved float64             `json:"totalCarbonSaved"`
	Status           string              `json:"status"`
	DeliveryAddress  string              `json:"deliveryAddress"`
	Notes            string              `json:"notes,omitempty"`
	OrderDate        time.Time           `json:"orderDate"`
	Items            []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID              string   `json:"id"`
	ProductID       string   `json:"productId"`
	ProductTitle    string   `json:"productTitle"`
	ProductImage    string   `json:"productImage"`
	Price           float64  `json:"price"`
	Quantity        int      `json:"quantity"`
	CarbonFootprint *float64 `json:"carbonFootprint"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	orders, err := h.orders.Place(r.Context(), order.PlaceRequest{
		BuyerID:         caller.ID,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// A multi-seller cart yields several orders; all of them are returned.
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = h.projectOrder(r, *o)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "orderID"), caller.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.projectOrder(r, *o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), status, caller.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.projectOrder(r, *o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	if err := h.orders.Cancel(r.Context(), chi.URLParam(r, "orderID"), caller.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 10)

	role := caller.Role
	if v := r.URL.Query().Get("role"); v != "" {
		role = user.Role(v)
	}

	orders, err := h.orders.List(r.Context(), caller.ID, role, page, size)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = h.projectOrder(r, o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// projectOrder maps a persisted order into the response shape, resolving
// current display data through the user and product repositories. Lookups
// are best effort: a vanished user or product leaves the field blank
// rather than failing the read.
func (h *Handler) projectOrder(r *http.Request, o order.Order) orderResponse {
	ctx := r.Context()

	resp := orderResponse{
		ID:               o.ID,
		TotalAmount:      o.TotalAmount.InexactFloat64(),
		TotalCarbonSaved: o.TotalCarbonSaved.InexactFloat64(),
		Status:           string(o.Status),
		DeliveryAddress:  o.DeliveryAddress,
		Notes:            o.Notes,
		OrderDate:        o.CreatedAt,
		Items:            make([]orderItemResponse, 0, len(o.Items)),
	}

	if u, err := h.userRepo.GetByID(ctx, o.BuyerID); err == nil {
		resp.BuyerName = u.FullName
	}
	if u, err := h.userRepo.GetByID(ctx, o.SellerID); err == nil {
		resp.SellerName = u.FullName
	}

	for _, item := range o.Items {
		ir := orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
		}
		if p, err := h.productRepo.GetByID(ctx, item.ProductID); err == nil {
			ir.ProductTitle = p.Title
			ir.ProductImage = h.imageURL(p.ImageURL)
			if p.CarbonFootprint != nil {
				fp := p.CarbonFootprint.InexactFloat64()
				ir.CarbonFootprint = &fp
			}
		}
		resp.Items = append(resp.Items, ir)
	}

	return resp
}

// queryInt reads a non-negative integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
