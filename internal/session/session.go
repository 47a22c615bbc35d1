package session

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Relay mirrors cart snapshots somewhere outside the process.
type Relay interface {
	store.Observer
	Clear(ctx context.Context) error
}

// RelayFactory builds a relay for a freshly created session id.
type RelayFactory func(sessionID string) Relay

// Session owns the cart for the lifetime of one shopping session. It is
// created at start-up and handed to every view that needs the cart.
type Session struct {
	ID   string
	Cart *store.MemoryStore

	relay   Relay
	relayID store.SubscriptionID
	log     *zap.Logger
}

// New starts a session with an empty cart. newRelay may be nil.
func New(log *zap.Logger, newRelay RelayFactory) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New().String()
	log = log.With(zap.String("session_id", id))

	s := &Session{
		ID:   id,
		Cart: store.NewMemoryStore(log),
		log:  log,
	}

	if newRelay != nil {
		s.relay = newRelay(id)
		subID, err := s.Cart.Subscribe(s.relay)
		if err != nil {
			return nil, fmt.Errorf("subscribe relay: %w", err)
		}
		s.relayID = subID
	}

	log.Info("session started")
	return s, nil
}

// Close detaches the relay, drops its mirrored state and discards the cart
func (s *Session) Close(ctx context.Context) error {
	var err error
	if s.relay != nil {
		s.Cart.Unsubscribe(s.relayID)
		if errClear := s.relay.Clear(ctx); errClear != nil {
			err = fmt.Errorf("clear relay: %w", errClear)
		}
		s.relay = nil
	}
	s.Cart.ClearCart()
	s.log.Info("session closed")
	return err
}
