package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gearhub/internal/handler"
	"gearhub/internal/model"
	"gearhub/internal/router"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func setupTestServer(t *testing.T, s *stack) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	productHandler := handler.NewProductHandler(s.products, logger)
	cartHandler := handler.NewCartHandler(s.carts, logger)
	checkoutHandler := handler.NewCheckoutHandler(s.checkout, logger)
	orderHandler := handler.NewOrderHandler(s.orders, logger)

	return router.New(productHandler, cartHandler, checkoutHandler, orderHandler, testAPIKey, logger)
}

func doJSON(t *testing.T, server http.Handler, method, path, body, sessionToken string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	if sessionToken != "" {
		req.Header.Set("X-Session-Token", sessionToken)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)
	server := setupTestServer(t, s)

	t.Run("requests without API key are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("health check bypasses auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("full checkout over HTTP", func(t *testing.T) {
		CleanupDB(t, s.db.Pool)
		SeedProducts(t, s.db.Pool)

		const session = "api-session-1"

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			`{"productId":"`+ProductOilFilter.String()+`","quantity":2}`, session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, server, http.MethodPost, "/api/checkout", "", session)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doJSON(t, server, http.MethodPost, "/api/checkout/contact",
			`{"email":"casey@example.com","firstName":"Casey","lastName":"Ortiz"}`, session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, server, http.MethodPost, "/api/checkout/shipping-address",
			`{"street":"9 Camshaft Ct","city":"Akron","state":"OH","postalCode":"44301"}`, session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, server, http.MethodPost, "/api/checkout/billing-address",
			`{"sameAsShipping":true}`, session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, server, http.MethodPost, "/api/checkout/shipping-method",
			`{"methodId":"`+ShippingStandard.String()+`"}`, session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, server, http.MethodPost, "/api/checkout/payment",
			`{"method":"credit_card","cardNumber":"4242424242424242","cardCvv":"123","cardExpiry":"12/29"}`, session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, server, http.MethodGet, "/api/checkout/review", "", session)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, server, http.MethodPost, "/api/orders",
			`{"termsAccepted":true}`, session)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var placed struct {
			Order model.Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &placed))
		assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, placed.Order.OrderNumber)

		// The guest can read the order back by email.
		w = doJSON(t, server, http.MethodGet,
			"/api/orders/"+placed.Order.OrderNumber+"?email=casey@example.com", "", "")
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		// Without the matching email the order does not exist.
		w = doJSON(t, server, http.MethodGet,
			"/api/orders/"+placed.Order.OrderNumber, "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("placing without a checkout session is rejected", func(t *testing.T) {
		CleanupDB(t, s.db.Pool)
		SeedProducts(t, s.db.Pool)

		const session = "api-session-2"

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			`{"productId":"`+ProductOilFilter.String()+`","quantity":1}`, session)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, server, http.MethodPost, "/api/orders",
			`{"termsAccepted":true}`, session)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

		var resp model.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, model.ErrCodeNoCheckoutSession, resp.Error)
	})
}
