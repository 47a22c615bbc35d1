package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()
	cart := store.NewMemoryStore(nil)
	router := NewRouter(Handlers{
		Products: NewProductHandler(ProductSourceMock{}, nil),
		Cart:     NewCartHandler(cart),
		Checkout: NewCheckoutHandler(checkout.NewService(cart, nil)),
	}, nil, 0)
	return router, cart
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var resp CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCart_EmptyCart(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, rec)
	assert.True(t, resp.Empty)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.TotalItems)
	assert.Equal(t, "0.00", resp.TotalPrice)
}

func TestCart_AddItemScenario(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"1","name":"Caldeirão","price":10.00}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"2","name":"Vela","price":"5.50"}`)
	rec = do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"2","name":"Vela","price":"5.50"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "1", resp.Items[0].Product.ID)
	assert.Equal(t, 1, resp.Items[0].Quantity)
	assert.Equal(t, "2", resp.Items[1].Product.ID)
	assert.Equal(t, 2, resp.Items[1].Quantity)
	assert.Equal(t, "11.00", resp.Items[1].Subtotal)
	assert.Equal(t, 3, resp.TotalItems)
	assert.Equal(t, "21.00", resp.TotalPrice)
	assert.False(t, resp.Empty)

	rec = do(t, router, http.MethodGet, "/api/v1/cart/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary SummaryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 3, summary.TotalItems)
}

func TestCart_QuantityRoutes(t *testing.T) {
	router, cart := setupRouter(t)
	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"1","price":"10.00"}`)
	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"2","price":"5.50"}`)

	rec := do(t, router, http.MethodPost, "/api/v1/cart/items/2/increment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeCart(t, rec).Items[1].Quantity)

	do(t, router, http.MethodPost, "/api/v1/cart/items/2/decrement", "")
	rec = do(t, router, http.MethodPost, "/api/v1/cart/items/2/decrement", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 1, resp.Items[1].Quantity)

	rec = do(t, router, http.MethodDelete, "/api/v1/cart/items/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.TotalItems)
	assert.Equal(t, "10.00", resp.TotalPrice)

	// misses are fine
	rec = do(t, router, http.MethodPost, "/api/v1/cart/items/missing/increment", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodDelete, "/api/v1/cart/items/missing", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, cart.TotalItems())
}

func TestCart_ClearCart(t *testing.T) {
	router, cart := setupRouter(t)
	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"1","price":"3.00"}`)

	rec := do(t, router, http.MethodDelete, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeCart(t, rec).Empty)
	assert.Equal(t, 0, cart.TotalItems())
}

func TestCart_AddItemValidation(t *testing.T) {
	router, cart := setupRouter(t)

	cases := []struct {
		name string
		body string
		code string
	}{
		{name: "bad json", body: `{"id":`, code: "invalid_request"},
		{name: "missing price", body: `{"id":"1"}`, code: "invalid_price"},
		{name: "missing id", body: `{"price":"1.00"}`, code: "invalid_argument"},
		{name: "negative price", body: `{"id":"1","price":"-1"}`, code: "invalid_argument"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/v1/cart/items", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.code, resp.Code)
		})
	}
	assert.Equal(t, 0, cart.TotalItems())
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
