package store

import (
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidArgument is returned when a mutation receives a malformed product or id.
var ErrInvalidArgument = errors.New("invalid argument")

// CartStore defines the operations views use to read and change the cart
type CartStore interface {
	// AddToCart merges the product into an existing line or appends a new one
	AddToCart(product domain.Product) error

	// IncrementQuantity adds one unit to the matching line, no-op on miss
	IncrementQuantity(productID string) error

	// DecrementQuantity removes one unit, never dropping a line below 1
	DecrementQuantity(productID string) error

	// RemoveFromCart deletes the matching line, no-op on miss
	RemoveFromCart(productID string) error

	// ClearCart empties the cart
	ClearCart()

	// TakeAndClear atomically returns the current cart and empties it
	TakeAndClear() (domain.Cart, bool)

	// TotalItems returns the number of units across all lines
	TotalItems() int

	// TotalPrice returns the exact sum of quantity * price
	TotalPrice() decimal.Decimal

	// Items returns a copy of the lines in first-add order
	Items() []domain.LineItem

	// Snapshot returns a copy of the whole cart with totals
	Snapshot() domain.Cart

	Subscribe(observer Observer) (SubscriptionID, error)
	Unsubscribe(id SubscriptionID)
}
