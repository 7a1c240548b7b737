// Package redis implements the cart store on top of Redis so carts survive
// process restarts and can be shared across instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rosewood-bakery/storefront/internal/app/domain/cart"
	"github.com/rosewood-bakery/storefront/internal/app/storage"
)

const keyPrefix = "storefront:cart:"

// CartStore persists cart snapshots in Redis keyed by session id.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ storage.CartStore = (*CartStore)(nil)

// NewCartStore creates a CartStore. A non-positive ttl keeps carts until
// they are explicitly deleted.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func (s *CartStore) LoadCart(ctx context.Context, sessionID string) (cart.Snapshot, bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Snapshot{}, false, nil
	}
	if err != nil {
		return cart.Snapshot{}, false, fmt.Errorf("load cart: %w", err)
	}

	var snap cart.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return cart.Snapshot{}, false, fmt.Errorf("decode cart: %w", err)
	}
	return snap, true, nil
}

func (s *CartStore) SaveCart(ctx context.Context, sessionID string, snap cart.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartStore) DeleteCart(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
