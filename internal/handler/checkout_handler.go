package handler

import (
	"encoding/json"
	"net/http"

	"gearhub/internal/checkout"
	"gearhub/internal/model"
	"gearhub/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout session HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Start handles POST /api/checkout requests.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	session, err := h.service.Start(r.Context(), o)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Contact handles POST /api/checkout/contact requests.
func (h *CheckoutHandler) Contact(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	var in checkout.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	session, err := h.service.SubmitContact(r.Context(), o, in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// ShippingAddress handles POST /api/checkout/shipping-address requests.
func (h *CheckoutHandler) ShippingAddress(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	var in checkout.AddressInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	session, err := h.service.SubmitShippingAddress(r.Context(), o, in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// BillingAddress handles POST /api/checkout/billing-address requests.
func (h *CheckoutHandler) BillingAddress(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	var in checkout.BillingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	session, err := h.service.SubmitBilling(r.Context(), o, in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// ShippingMethods handles GET /api/shipping-methods requests. Costs are
// resolved against the caller's current cart total so free-shipping
// thresholds show up as zero.
func (h *CheckoutHandler) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	options, err := h.service.ListShippingMethods(r.Context(), o)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shippingMethods": options,
	})
}

// ShippingMethod handles POST /api/checkout/shipping-method requests.
func (h *CheckoutHandler) ShippingMethod(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	var req struct {
		MethodID uuid.UUID `json:"methodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	session, err := h.service.SelectShippingMethod(r.Context(), o, req.MethodID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Payment handles POST /api/checkout/payment requests. Card number and
// CVV are validated and discarded; only the last four digits survive.
func (h *CheckoutHandler) Payment(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	var in checkout.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	session, err := h.service.SubmitPayment(r.Context(), o, in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Review handles GET /api/checkout/review requests. An optional
// discount query parameter applies a discount code to the totals.
func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Review(r.Context(), o, r.URL.Query().Get("discount"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Abandon handles DELETE /api/checkout requests. The cart survives.
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	if err := h.service.Abandon(r.Context(), o); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
