package handler

import (
	"net/http"
	"time"
)

type sellerDashboardResponse struct {
	TotalEarnings    float64               `json:"totalEarnings"`
	TotalCarbonSaved float64               `json:"totalCarbonSaved"`
	TotalOrders      int                   `json:"totalOrders"`
	ListedProducts   int                   `json:"listedProducts"`
	RecentOrders     []recentOrderResponse `json:"recentOrders"`
}

type recentOrderResponse struct {
	OrderID     string    `json:"orderId"`
	BuyerName   string    `json:"buyerName"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	OrderDate   time.Time `json:"orderDate"`
}

type buyerDashboardResponse struct {
	TotalSpent       float64 `json:"totalSpent"`
	TotalCarbonSaved float64 `json:"totalCarbonSaved"`
	TreesEquivalent  float64 `json:"treesEquivalent"`
	WaterSavedLiters float64 `json:"waterSavedLiters"`
	TotalOrders      int     `json:"totalOrders"`
}

func (h *Handler) sellerDashboard(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	stats, err := h.dashboards.Seller(r.Context(), caller.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := sellerDashboardResponse{
		TotalEarnings:    stats.TotalEarnings.InexactFloat64(),
		TotalCarbonSaved: stats.TotalCarbonSaved.InexactFloat64(),
		TotalOrders:      stats.TotalOrders,
		ListedProducts:   stats.ListedProducts,
		RecentOrders:     make([]recentOrderResponse, len(stats.RecentOrders)),
	}
	for i, ro := range stats.RecentOrders {
		resp.RecentOrders[i] = recentOrderResponse{
			OrderID:     ro.OrderID,
			BuyerName:   ro.BuyerName,
			TotalAmount: ro.TotalAmount.InexactFloat64(),
			Status:      string(ro.Status),
			OrderDate:   ro.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) buyerDashboard(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	stats, err := h.dashboards.Buyer(r.Context(), caller.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, buyerDashboardResponse{
		TotalSpent:       stats.TotalSpent.InexactFloat64(),
		TotalCarbonSaved: stats.TotalCarbonSaved.InexactFloat64(),
		TreesEquivalent:  stats.TreesEquivalent.InexactFloat64(),
		WaterSavedLiters: stats.WaterSavedLiters.InexactFloat64(),
		TotalOrders:      stats.TotalOrders,
	})
}
