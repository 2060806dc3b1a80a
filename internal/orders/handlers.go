package orders

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/televista/storefront-api/internal/common"
)

// Handler exposes order status lookups.
type Handler struct {
	Store *StatusStore
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{orderID}/status", h.Status)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	status, err := h.Store.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "internal error", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]string{"orderId": orderID, "status": string(status)})
}
