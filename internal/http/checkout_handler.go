package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/checkout"
)

type Checkouter interface {
	Confirm(ctx context.Context, confirmed bool) (*checkout.Receipt, error)
}

type CheckoutHandler struct {
	checkout Checkouter
}

func NewCheckoutHandler(c Checkouter) *CheckoutHandler {
	return &CheckoutHandler{checkout: c}
}

type CheckoutRequestDTO struct {
	Confirmed bool `json:"confirmed"`
}

type CheckoutResponse struct {
	ReceiptID   string `json:"receipt_id"`
	TotalItems  int    `json:"total_items"`
	TotalPrice  string `json:"total_price"`
	CompletedAt string `json:"completed_at"`
	Message     string `json:"message"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	receipt, err := h.checkout.Confirm(r.Context(), req.Confirmed)
	switch {
	case errors.Is(err, checkout.ErrNotConfirmed):
		respondError(w, http.StatusBadRequest, "not_confirmed", "checkout must be confirmed")
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponse{
		ReceiptID:   receipt.ID,
		TotalItems:  receipt.TotalItems,
		TotalPrice:  receipt.TotalPrice.StringFixed(2),
		CompletedAt: receipt.CompletedAt.Format(time.RFC3339),
		Message:     receipt.Message,
	})
}
