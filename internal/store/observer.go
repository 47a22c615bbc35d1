package store

import "github.com/fjod/go_cart/storefront/internal/domain"

// Observer is notified with a fresh snapshot after every cart mutation.
type Observer interface {
	CartChanged(cart domain.Cart)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(cart domain.Cart)

func (f ObserverFunc) CartChanged(cart domain.Cart) {
	f(cart)
}

// SubscriptionID identifies a registered observer.
type SubscriptionID uint64

type subscription struct {
	id       SubscriptionID
	observer Observer
}
