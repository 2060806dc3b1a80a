package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/televista/storefront-api/internal/catalog"
	"github.com/televista/storefront-api/internal/common"
)

// Handler exposes the session cart endpoints.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{cartID}", h.Get)
	r.Post("/{cartID}/items", h.AddItem)
	r.Patch("/{cartID}/items/{productID}", h.UpdateItem)
	r.Delete("/{cartID}/items/{productID}", h.RemoveItem)
	r.Delete("/{cartID}", h.Clear)
}

type addItemRequest struct {
	ProductID      string `json:"productId"`
	Qty            int    `json:"qty"`
	WarrantyMonths int    `json:"warrantyMonths"`
}

type updateItemRequest struct {
	Qty            *int `json:"qty"`
	WarrantyMonths *int `json:"warrantyMonths"`
}

type cartResponse struct {
	Cart
	Pricing *Quote `json:"pricing,omitempty"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Create(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, cartResponse{Cart: cart})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cartID")
	cart, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quote, err := h.svc.QuoteCart(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, cartResponse{Cart: cart, Pricing: &quote})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid JSON body", nil)
		return
	}
	cart, err := h.svc.AddItem(r.Context(), chi.URLParam(r, "cartID"), req.ProductID, req.Qty, req.WarrantyMonths)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, cartResponse{Cart: cart})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid JSON body", nil)
		return
	}
	if req.Qty == nil && req.WarrantyMonths == nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "nothing to update", nil)
		return
	}
	cartID := chi.URLParam(r, "cartID")
	productID := chi.URLParam(r, "productID")
	var (
		cart Cart
		err  error
	)
	if req.Qty != nil {
		cart, err = h.svc.UpdateQty(r.Context(), cartID, productID, *req.Qty)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if req.WarrantyMonths != nil {
		cart, err = h.svc.SelectWarranty(r.Context(), cartID, productID, *req.WarrantyMonths)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	common.JSON(w, http.StatusOK, cartResponse{Cart: cart})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, cartResponse{Cart: cart})
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "cart or product not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeInvalidInput, err.Error(), nil)
	case errors.Is(err, catalog.ErrInvalidRecord):
		common.JSONError(w, http.StatusBadGateway, common.CodeUpstreamInvalid, "catalog returned an invalid record", nil)
	case errors.Is(err, catalog.ErrUpstream):
		common.JSONError(w, http.StatusBadGateway, common.CodeUpstreamError, "catalog unavailable", nil)
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("cart handler failure")
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "internal error", nil)
	}
}
