package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout_Success(t *testing.T) {
	router, cart := setupRouter(t)
	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"1","price":"10.00"}`)
	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"2","price":"5.50"}`)
	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"2","price":"5.50"}`)

	rec := do(t, router, http.MethodPost, "/api/v1/checkout", `{"confirmed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CheckoutResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ReceiptID)
	assert.Equal(t, 3, resp.TotalItems)
	assert.Equal(t, "21.00", resp.TotalPrice)
	assert.NotEmpty(t, resp.Message)
	assert.NotEmpty(t, resp.CompletedAt)

	assert.Empty(t, cart.Items())
}

func TestCheckout_Errors(t *testing.T) {
	router, cart := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/checkout", `{"confirmed":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	do(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":"1","price":"10.00"}`)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout", `{"confirmed":false}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_confirmed", resp.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/checkout", `nope`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 1, cart.TotalItems())
}
