package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNotConfirmed = errors.New("checkout was not confirmed")
	ErrEmptyCart    = errors.New("cart is empty")
)

const confirmationMessage = "Purchase completed! Happy Halloween!"

// Receipt summarises a completed checkout
type Receipt struct {
	ID          string          `json:"id"`
	TotalItems  int             `json:"total_items"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CompletedAt time.Time       `json:"completed_at"`
	Message     string          `json:"message"`
}

type Service struct {
	cart store.CartStore
	log  *zap.Logger
	now  func() time.Time
}

func NewService(cart store.CartStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cart: cart, log: log.Named("checkout"), now: time.Now}
}

// Confirm finalises the purchase once the user confirmed it: the totals are
// captured in a receipt and the cart is cleared. No payment is taken.
func (s *Service) Confirm(ctx context.Context, confirmed bool) (*Receipt, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}

	taken, ok := s.cart.TakeAndClear()
	if !ok {
		return nil, ErrEmptyCart
	}

	receipt := &Receipt{
		ID:          uuid.New().String(),
		TotalItems:  taken.TotalItems,
		TotalPrice:  taken.TotalPrice,
		CompletedAt: s.now().UTC(),
		Message:     confirmationMessage,
	}

	logger.WithContext(ctx, s.log).Info("checkout completed",
		zap.String("receipt_id", receipt.ID),
		zap.Int("total_items", receipt.TotalItems),
		zap.String("total_price", receipt.TotalPrice.StringFixed(2)),
	)
	return receipt, nil
}
