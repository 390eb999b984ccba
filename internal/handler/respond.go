package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ecofinds/marketplace-api/internal/domain/cart"
	"github.com/ecofinds/marketplace-api/internal/domain/order"
	"github.com/ecofinds/marketplace-api/internal/domain/product"
	"github.com/ecofinds/marketplace-api/internal/domain/user"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeDomainError maps domain errors onto HTTP statuses. Each error kind
// stays distinct here even though several share a status code, so the core
// remains testable while the boundary stays simple.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var itErr *order.InvalidTransitionError

	switch {
	// Validation.
	case errors.Is(err, order.ErrBlankAddress),
		errors.Is(err, cart.ErrBadQuantity),
		errors.Is(err, cart.ErrProductIDZero),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, product.ErrBlankTitle),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrNegativeWeight),
		errors.Is(err, product.ErrInvalidCategory),
		errors.Is(err, product.ErrBlankKeyword),
		errors.Is(err, product.ErrUnknownListingStatus):
		writeError(w, http.StatusBadRequest, err.Error())

	// Not found.
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	// Authorization.
	case errors.Is(err, order.ErrUnauthorized),
		errors.Is(err, order.ErrSellerOnly),
		errors.Is(err, product.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())

	// Conflicts.
	case errors.Is(err, cart.ErrEmpty),
		errors.Is(err, cart.ErrOwnProduct),
		errors.Is(err, order.ErrOrderDelivered),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrUsernameTaken),
		errors.As(err, &itErr):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, user.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	default:
		zctx.From(r.Context()).Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
