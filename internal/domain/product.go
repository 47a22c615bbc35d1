package domain

import "github.com/shopspring/decimal"

// Product is a catalog record as the cart sees it.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURI string          `json:"image_uri"`
}
