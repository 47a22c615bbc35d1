package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = time.Second

// RedisRelay mirrors cart snapshots of one session to Redis so views running
// in other processes can follow the cart. It implements store.Observer.
type RedisRelay struct {
	client    *redis.Client
	sessionID string
	baseTTL   time.Duration
	log       *zap.Logger

	mu          sync.Mutex // serializes publishes so versions land in order
	lastVersion uint64
}

func NewRedisRelay(client *redis.Client, sessionID string, baseTTL time.Duration, log *zap.Logger) *RedisRelay {
	if log == nil {
		log = zap.NewNop()
	}
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisRelay{
		client:    client,
		sessionID: sessionID,
		baseTTL:   baseTTL,
		log:       log.Named("relay").With(zap.String("session_id", sessionID)),
	}
}

// CartChanged stores the snapshot and publishes it. Errors are logged only:
// the cart must not depend on Redis being reachable.
func (r *RedisRelay) CartChanged(cart domain.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.Publish(ctx, cart); err != nil {
		r.log.Warn("relay publish failed", zap.Error(err))
	}
}

// Publish writes the snapshot under the session key and announces it on the
// events channel. A snapshot older than the last one published is dropped.
func (r *RedisRelay) Publish(ctx context.Context, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.Version != 0 && cart.Version <= r.lastVersion {
		r.log.Debug("stale snapshot dropped",
			zap.Uint64("version", cart.Version),
			zap.Uint64("last_version", r.lastVersion),
		)
		return nil
	}

	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, SnapshotKey(r.sessionID), payload, ttl)
	pipe.Publish(ctx, EventsChannel(r.sessionID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	if cart.Version > r.lastVersion {
		r.lastVersion = cart.Version
	}
	return nil
}

// Latest reads the last mirrored snapshot. ErrNoSnapshot when none exists.
func (r *RedisRelay) Latest(ctx context.Context) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, SnapshotKey(r.sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

// Clear removes the mirrored snapshot when the session ends
func (r *RedisRelay) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, SnapshotKey(r.sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func SnapshotKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func EventsChannel(sessionID string) string {
	return fmt.Sprintf("cart:%s:events", sessionID)
}
