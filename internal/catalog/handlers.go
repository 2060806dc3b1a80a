package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/televista/storefront-api/internal/common"
	"github.com/televista/storefront-api/internal/obs"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Products handles GET /api/v1/products with pagination.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	page, limit := common.ParsePagination(r, h.service.defaultLimit)
	result, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONList(w, http.StatusOK, result.Items, result.Total, map[string]any{
		"pagination": common.Pagination{Page: result.Page, PerPage: result.Limit, TotalItems: result.Total},
	})
}

// ProductDetail handles GET /api/v1/products/{id}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	product, err := h.service.Product(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// Quote handles GET /api/v1/products/{id}/quote?qty=&warrantyMonths=.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	qty := common.AtoiDefault(r.URL.Query().Get("qty"), 1)
	warrantyMonths := common.AtoiDefault(r.URL.Query().Get("warrantyMonths"), 0)
	quote, err := h.service.QuoteProduct(r.Context(), id, qty, warrantyMonths)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if m := obs.Domain(); m != nil {
		m.QuotesTotal.WithLabelValues("product").Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "product not found", nil)
	case errors.Is(err, ErrInvalidRecord):
		common.JSONError(w, http.StatusBadGateway, common.CodeUpstreamInvalid, err.Error(), nil)
	case errors.Is(err, ErrUpstream):
		common.JSONError(w, http.StatusBadGateway, common.CodeUpstreamError, "catalog backend unavailable", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "unable to load catalog", nil)
	}
}
