package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"go.uber.org/zap"
)

// ProductSource is the read-only catalog
type ProductSource interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

type ProductHandler struct {
	catalog ProductSource
	log     *zap.Logger
}

func NewProductHandler(catalog ProductSource, log *zap.Logger) *ProductHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductHandler{catalog: catalog, log: log}
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Error    string            `json:"error,omitempty"`
}

// Get lists the catalog. On failure the list is empty and the error is user facing.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.Products(r.Context())
	if err != nil {
		logger.WithContext(r.Context(), h.log).Error("catalog fetch failed", zap.Error(err))
		respondJSON(w, http.StatusBadGateway, &ProductsResponse{
			Products: []ProductResponse{},
			Error:    "Could not load products. Please try again.",
		})
		return
	}

	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = toProductResponse(p)
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}
