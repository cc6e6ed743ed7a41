package router

import (
	"net/http"

	"gearhub/internal/handler"
	"gearhub/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	orderHandler *handler.OrderHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue
	mux.HandleFunc("GET /api/products", productHandler.GetAll)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)

	// Cart
	mux.HandleFunc("GET /api/cart", cartHandler.Get)
	mux.HandleFunc("POST /api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{productID}", cartHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", cartHandler.RemoveItem)
	mux.HandleFunc("POST /api/cart/merge", cartHandler.Merge)

	// Checkout
	mux.HandleFunc("GET /api/shipping-methods", checkoutHandler.ShippingMethods)
	mux.HandleFunc("POST /api/checkout", checkoutHandler.Start)
	mux.HandleFunc("DELETE /api/checkout", checkoutHandler.Abandon)
	mux.HandleFunc("POST /api/checkout/contact", checkoutHandler.Contact)
	mux.HandleFunc("POST /api/checkout/shipping-address", checkoutHandler.ShippingAddress)
	mux.HandleFunc("POST /api/checkout/billing-address", checkoutHandler.BillingAddress)
	mux.HandleFunc("POST /api/checkout/shipping-method", checkoutHandler.ShippingMethod)
	mux.HandleFunc("POST /api/checkout/payment", checkoutHandler.Payment)
	mux.HandleFunc("GET /api/checkout/review", checkoutHandler.Review)

	// Orders
	mux.HandleFunc("POST /api/orders", orderHandler.Place)
	mux.HandleFunc("GET /api/orders", orderHandler.List)
	mux.HandleFunc("GET /api/orders/{number}", orderHandler.GetByNumber)
	mux.HandleFunc("GET /api/orders/{number}/history", orderHandler.StatusHistory)
	mux.HandleFunc("PATCH /api/orders/{number}/status", orderHandler.UpdateStatus)
	mux.HandleFunc("PATCH /api/orders/{number}/payment", orderHandler.UpdatePaymentStatus)
	mux.HandleFunc("POST /api/orders/{number}/cancel", orderHandler.Cancel)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth -> Identity
	var h http.Handler = mux
	h = middleware.Identity(h)
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
