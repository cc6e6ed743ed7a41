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

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// owner resolves the caller's cart identity, writing a 400 when the
// request carried neither a user ID nor a session token.
func owner(w http.ResponseWriter, r *http.Request) (model.CartOwner, bool) {
	o, ok := middleware.OwnerFrom(r.Context())
	if !ok {
		badRequest(w, model.ErrCodeValidation, "an X-User-ID or X-Session-Token header is required")
	}
	return o, ok
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), o)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

type cartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	view, err := h.service.AddItem(r.Context(), o, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateItem handles PATCH /api/cart/items/{productID} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		badRequest(w, model.ErrCodeValidation, "invalid product ID format")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}

	view, err := h.service.SetQuantity(r.Context(), o, productID, req.Quantity)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/cart/items/{productID} requests.
// Removing an absent line is a no-op, not an error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	o, ok := owner(w, r)
	if !ok {
		return
	}

	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		badRequest(w, model.ErrCodeValidation, "invalid product ID format")
		return
	}

	view, _, err := h.service.RemoveItem(r.Context(), o, productID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Merge handles POST /api/cart/merge requests, folding an anonymous
// session cart into the authenticated user's cart.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionToken string    `json:"sessionToken"`
		UserID       uuid.UUID `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, model.ErrCodeInvalidJSON, "invalid request body")
		return
	}
	if req.SessionToken == "" || req.UserID == uuid.Nil {
		badRequest(w, model.ErrCodeValidation, "sessionToken and userId are required")
		return
	}

	view, err := h.service.Merge(r.Context(), req.SessionToken, req.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
