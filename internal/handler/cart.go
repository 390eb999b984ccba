package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecofinds/marketplace-api/internal/domain/cart"
)

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items            []cartItemResponse `json:"items"`
	TotalAmount      float64            `json:"totalAmount"`
	TotalCarbonSaved float64            `json:"totalCarbonSaved"`
}

type cartItemResponse struct {
	ProductID       string   `json:"productId"`
	Title           string   `json:"title"`
	Price           float64  `json:"price"`
	Quantity        int      `json:"quantity"`
	ImageURL        string   `json:"imageUrl"`
	CarbonFootprint *float64 `json:"carbonFootprint"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	snap, err := h.carts.Get(r.Context(), caller.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.projectCart(snap))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req addCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.carts.Add(r.Context(), caller.ID, req.ProductID, req.Quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.respondCart(w, r, caller.ID)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req updateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.carts.Update(r.Context(), caller.ID, productID, req.Quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.respondCart(w, r, caller.ID)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.carts.Remove(r.Context(), caller.ID, productID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.respondCart(w, r, caller.ID)
}

// respondCart writes the caller's fresh cart snapshot after a mutation.
func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, buyerID string) {
	snap, err := h.carts.Get(r.Context(), buyerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.projectCart(snap))
}

func (h *Handler) projectCart(snap *cart.Snapshot) cartResponse {
	resp := cartResponse{
		Items:            make([]cartItemResponse, len(snap.Items)),
		TotalAmount:      snap.TotalAmount.InexactFloat64(),
		TotalCarbonSaved: snap.TotalCarbonSaved.InexactFloat64(),
	}
	for i, item := range snap.Items {
		resp.Items[i] = cartItemResponse{
			ProductID:       item.ProductID,
			Title:           item.Title,
			Price:           item.Price.InexactFloat64(),
			Quantity:        item.Quantity,
			ImageURL:        h.imageURL(item.ImageURL),
			CarbonFootprint: floatPtr(item.CarbonFootprint),
		}
	}
	return resp
}
