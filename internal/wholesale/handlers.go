package wholesale

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/televista/storefront-api/internal/catalog"
	"github.com/televista/storefront-api/internal/common"
	"github.com/televista/storefront-api/internal/obs"
	"github.com/televista/storefront-api/internal/orders"
)

var validate = validator.New()

// Handler exposes the wholesale endpoints.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the wholesale endpoints. Quote traffic runs through the
// rate limiter; order submission is guarded by the idempotency middleware.
func (h *Handler) Routes(limiter, idem func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/products", h.Products)
		r.With(limiter).Post("/quote", h.Quote)
		r.With(idem).Post("/orders", h.Submit)
	}
}

type quoteRequest struct {
	Items []LineRequest `json:"items" validate:"required,min=1,dive"`
}

type submitRequest struct {
	Items   []LineRequest `json:"items" validate:"required,min=1,dive"`
	Contact contactDTO    `json:"contact" validate:"required"`
}

type contactDTO struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Phone   string `json:"phone" validate:"required,min=6,max=20"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"required,min=10,max=500"`
}

func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSONList(w, http.StatusOK, products, len(products), nil)
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "invalid request", nil)
		return
	}
	result, err := h.svc.Quote(r.Context(), req.Items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if m := obs.Domain(); m != nil {
		m.QuotesTotal.WithLabelValues("wholesale").Inc()
	}
	common.JSON(w, http.StatusOK, result)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "invalid request", nil)
		return
	}
	contact := orders.Contact{
		Name:    req.Contact.Name,
		Phone:   req.Contact.Phone,
		Email:   req.Contact.Email,
		Address: req.Contact.Address,
	}
	result, err := h.svc.Submit(r.Context(), req.Items, contact)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusAccepted, result)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, err.Error(), nil)
	case errors.Is(err, ErrNoSelection):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeNoSelection, "no lines selected", nil)
	case errors.Is(err, catalog.ErrInvalidRecord):
		common.JSONError(w, http.StatusBadGateway, common.CodeUpstreamInvalid, "catalog returned an invalid record", nil)
	case errors.Is(err, catalog.ErrUpstream):
		common.JSONError(w, http.StatusBadGateway, common.CodeUpstreamError, "catalog unavailable", nil)
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("wholesale handler failure")
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "internal error", nil)
	}
}
