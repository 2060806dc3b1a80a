package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/televista/storefront-api/internal/cart"
	"github.com/televista/storefront-api/internal/catalog"
	"github.com/televista/storefront-api/internal/common"
	"github.com/televista/storefront-api/internal/obs"
	"github.com/televista/storefront-api/internal/orders"
	"github.com/televista/storefront-api/internal/pricing"
)

var validate = validator.New()

// Handler exposes the checkout endpoints.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the checkout endpoints. Quote traffic runs through the
// rate limiter; submission is guarded by the idempotency middleware.
func (h *Handler) Routes(limiter, idem func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.With(limiter).Post("/quote", h.Quote)
		r.With(idem).Post("/", h.Submit)
	}
}

type quoteRequest struct {
	CartID       string        `json:"cartId" validate:"required"`
	ShippingCost pricing.Money `json:"shippingCost" validate:"gte=0"`
}

type submitRequest struct {
	CartID       string        `json:"cartId" validate:"required"`
	ShippingCost pricing.Money `json:"shippingCost" validate:"gte=0"`
	Contact      contactDTO    `json:"contact" validate:"required"`
}

type contactDTO struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Phone   string `json:"phone" validate:"required,min=6,max=20"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"required,min=10,max=500"`
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "invalid request", validationDetails(err))
		return
	}
	result, err := h.svc.Quote(r.Context(), req.CartID, req.ShippingCost)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if m := obs.Domain(); m != nil {
		m.QuotesTotal.WithLabelValues("checkout").Inc()
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
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "invalid request", validationDetails(err))
		return
	}
	contact := orders.Contact{
		Name:    req.Contact.Name,
		Phone:   req.Contact.Phone,
		Email:   req.Contact.Email,
		Address: req.Contact.Address,
	}
	result, err := h.svc.Submit(r.Context(), req.CartID, req.ShippingCost, contact)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusAccepted, result)
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "cart or product not found", nil)
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeEmptyCart, "cart has no items", nil)
	case errors.Is(err, cart.ErrInvalidInput):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeInvalidInput, err.Error(), nil)
	case errors.Is(err, catalog.ErrInvalidRecord), errors.Is(err, catalog.ErrUpstream):
		common.JSONError(w, http.StatusBadGateway, common.CodeUpstreamError, "catalog unavailable", nil)
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("checkout handler failure")
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "internal error", nil)
	}
}
