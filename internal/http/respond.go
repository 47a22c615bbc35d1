package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ProductResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	ImageURI string `json:"image_uri"`
}

type LineItemResponse struct {
	Product  ProductResponse `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal string          `json:"subtotal"`
}

type CartResponse struct {
	Items      []LineItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice string             `json:"total_price"`
	Empty      bool               `json:"empty"`
}

// prices leave the view layer with exactly two decimals
func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.StringFixed(2),
		ImageURI: p.ImageURI,
	}
}

func toCartResponse(cart domain.Cart) CartResponse {
	items := make([]LineItemResponse, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = LineItemResponse{
			Product:  toProductResponse(item.Product),
			Quantity: item.Quantity,
			Subtotal: item.Subtotal().StringFixed(2),
		}
	}
	return CartResponse{
		Items:      items,
		TotalItems: cart.TotalItems,
		TotalPrice: cart.TotalPrice.StringFixed(2),
		Empty:      cart.IsEmpty(),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// status and headers are already sent; RequestLogger records the outcome
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
