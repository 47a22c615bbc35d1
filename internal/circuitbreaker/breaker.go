package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Settings controls when the breaker opens and how long it stays open.
type Settings struct {
	// ConsecutiveFailures trips the breaker once reached
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a half-open probe
	OpenTimeout time.Duration
}

// ErrOpen is returned by Execute while the breaker is open.
var ErrOpen = gobreaker.ErrOpenState

// New creates a breaker that logs its state transitions
func New[T any](name string, s Settings, log *zap.Logger) *gobreaker.CircuitBreaker[T] {
	if log == nil {
		log = zap.NewNop()
	}
	failures := s.ConsecutiveFailures
	if failures == 0 {
		failures = 1
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a caller giving up says nothing about the upstream
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}
