package store

import (
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MemoryStore implements CartStore with in-memory storage
type MemoryStore struct {
	mu    sync.RWMutex
	items   []domain.LineItem // first-add order, unique by product id
	version uint64            // bumped on every notifying mutation

	subMu     sync.Mutex
	subs      []subscription
	nextSubID SubscriptionID

	log *zap.Logger
}

// NewMemoryStore creates an empty cart store. A nil logger disables logging.
func NewMemoryStore(log *zap.Logger) *MemoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryStore{log: log.Named("cart")}
}

// AddToCart increments the line for product.ID or appends a new line with quantity 1
func (s *MemoryStore) AddToCart(product domain.Product) error {
	if product.ID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("%w: product %s has negative price %s", ErrInvalidArgument, product.ID, product.Price)
	}

	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, domain.LineItem{Product: product, Quantity: 1})
	}
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("item added", zap.String("product_id", product.ID), zap.Int("total_items", snapshot.TotalItems))
	s.notify(snapshot)
	return nil
}

// IncrementQuantity adds one unit to the matching line
func (s *MemoryStore) IncrementQuantity(productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.items[i].Quantity++
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("quantity incremented", zap.String("product_id", productID))
	s.notify(snapshot)
	return nil
}

// DecrementQuantity removes one unit from the matching line. A line at
// quantity 1 stays at 1; deleting it is RemoveFromCart's job.
func (s *MemoryStore) DecrementQuantity(productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 || s.items[i].Quantity <= 1 {
		s.mu.Unlock()
		return nil
	}
	s.items[i].Quantity--
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("quantity decremented", zap.String("product_id", productID))
	s.notify(snapshot)
	return nil
}

// RemoveFromCart deletes the matching line. Observers are notified even on a miss.
func (s *MemoryStore) RemoveFromCart(productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	if i := s.indexOf(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.log.Debug("item removed", zap.String("product_id", productID))
	}
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// ClearCart empties the cart unconditionally
func (s *MemoryStore) ClearCart() {
	s.mu.Lock()
	s.items = nil
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("cart cleared")
	s.notify(snapshot)
}

// TakeAndClear empties the cart and returns what it held, under one lock.
// ok is false, and nothing is notified, when the cart was already empty.
func (s *MemoryStore) TakeAndClear() (taken domain.Cart, ok bool) {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return domain.Cart{}, false
	}
	taken = s.snapshotLocked()
	s.items = nil
	s.version++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("cart taken", zap.Int("total_items", taken.TotalItems))
	s.notify(snapshot)
	return taken, true
}

// TotalItems returns the sum of quantities across all lines
func (s *MemoryStore) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalItemsLocked()
}

// TotalPrice returns sum(quantity * price) without floating point drift
func (s *MemoryStore) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPriceLocked()
}

// Items returns a copy of the current lines
func (s *MemoryStore) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyItemsLocked()
}

// Snapshot returns a copy of the cart with totals
func (s *MemoryStore) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers an observer that receives a snapshot after each mutation
func (s *MemoryStore) Subscribe(observer Observer) (SubscriptionID, error) {
	if observer == nil {
		return 0, fmt.Errorf("%w: observer is required", ErrInvalidArgument)
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSubID++
	s.subs = append(s.subs, subscription{id: s.nextSubID, observer: observer})
	return s.nextSubID, nil
}

// Unsubscribe removes a previously registered observer. Unknown ids are ignored.
func (s *MemoryStore) Unsubscribe(id SubscriptionID) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notify runs outside s.mu so observers may call back into the store
func (s *MemoryStore) notify(snapshot domain.Cart) {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.observer.CartChanged(snapshot)
	}
}

func (s *MemoryStore) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) totalItemsLocked() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *MemoryStore) totalPriceLocked() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (s *MemoryStore) copyItemsLocked() []domain.LineItem {
	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *MemoryStore) snapshotLocked() domain.Cart {
	return domain.Cart{
		Items:      s.copyItemsLocked(),
		TotalItems: s.totalItemsLocked(),
		TotalPrice: s.totalPriceLocked(),
		Version:    s.version,
	}
}
