package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	cart store.CartStore
}

func NewCartHandler(cart store.CartStore) *CartHandler {
	return &CartHandler{cart: cart}
}

type AddItemRequestDTO struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	ImageURI string           `json:"image_uri"`
}

type SummaryResponse struct {
	TotalItems int `json:"total_items"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// GetSummary feeds the cart badge
func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SummaryResponse{TotalItems: h.cart.TotalItems()})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Price == nil {
		respondError(w, http.StatusBadRequest, "invalid_price", "price is required")
		return
	}

	product := domain.Product{
		ID:       req.ID,
		Name:     req.Name,
		Price:    *req.Price,
		ImageURI: req.ImageURI,
	}
	if err := h.cart.AddToCart(product); err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartResponse(h.cart.Snapshot()))
}

func (h *CartHandler) IncrementQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, chi.URLParam(r, "product_id"), h.cart.IncrementQuantity)
}

func (h *CartHandler) DecrementQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, chi.URLParam(r, "product_id"), h.cart.DecrementQuantity)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, chi.URLParam(r, "product_id"), h.cart.RemoveFromCart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart()
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

func (h *CartHandler) mutate(w http.ResponseWriter, productID string, op func(string) error) {
	if err := op(productID); err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

func handleStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrInvalidArgument) {
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
