package handler

import (
	"encoding/json"
	"net/http"

	"gearhub/internal/middleware"
	"gearhub/internal/model"
	"gearhub/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// viewer builds the order visibility scope from the request: the
// authenticated user ID, or for guests the email they claim via query
// parameter.
func viewer(r *http.Request) service.OrderViewer {
	v := service.OrderViewer{Email: r.URL.Query().Get("email")}
	if o, ok := middleware.OwnerFrom(r.Context()); ok {
		v.UserID = o.UserID
	}
	return v
}

type placeOrderRequest struct {
	TermsAccepted bool   `json:"termsAccepted"`
	DiscountCode  string `json:"discountCode"`
	Notes         string `json:"notes"`
}

// Place handles POST /api/orders requests, converting the reviewed
// checkout session into an order.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	result, err := h.service.PlaceOrder(r.Context(), o, service.PlaceOrderInput{
		TermsAccepted: req.TermsAccepted,
		DiscountCode:  req.DiscountCode,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// GetByNumber handles GET /api/orders/{number} requests.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if number == "" {
		badRequest(w, model.ErrCodeValidation, "order number is required")
		return
	}

	result, err := h.service.GetByNumber(r.Context(), viewer(r), number)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// List handles GET /api/orders requests for the authenticated user.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	o, ok := middleware.OwnerFrom(r.Context())
	if !ok || o.UserID == nil {
		writeError(w, model.ErrUnauthorised, h.logger)
		return
	}

	orders, err := h.service.ListByUser(r.Context(), *o.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// StatusHistory handles GET /api/orders/{number}/history requests.
func (h *OrderHandler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")

	history, err := h.service.GetStatusHistory(r.Context(), viewer(r), number)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
	})
}

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
	Note   string            `json:"note"`
}

// UpdateStatus handles PATCH /api/orders/{number}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	var actor *uuid.UUID
	if o, ok := middleware.OwnerFrom(r.Context()); ok {
		actor = o.UserID
	}

	order, err := h.service.TransitionStatus(r.Context(), number, req.Status, req.Note, actor)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{number}/cancel requests. Customers
// may cancel their own orders while still pending or processing.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")

	var req struct {
		Note string `json:"note"`
	}
	// Body is optional for cancellation.
	_ = json.NewDecoder(r.Body).Decode(&req)

	// Ownership check first so cancelling someone else's order reads as
	// not found.
	result, err := h.service.GetByNumber(r.Context(), viewer(r), number)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if !result.Order.CanBeCancelled() {
		writeError(w, &model.InvalidTransitionError{
			From: result.Order.Status,
			To:   model.OrderStatusCancelled,
		}, h.logger)
		return
	}

	var actor *uuid.UUID
	if o, ok := middleware.OwnerFrom(r.Context()); ok {
		actor = o.UserID
	}

	note := req.Note
	if note == "" {
		note = "Cancelled by customer"
	}

	order, err := h.service.TransitionStatus(r.Context(), number, model.OrderStatusCancelled, note, actor)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type paymentStatusRequest struct {
	Status    model.PaymentStatus `json:"status"`
	Reference string              `json:"reference"`
}

// UpdatePaymentStatus handles PATCH /api/orders/{number}/payment requests.
func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")

	var req paymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	order, err := h.service.RecordPaymentStatus(r.Context(), number, req.Status, req.Reference)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
