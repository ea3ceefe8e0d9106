// internal/infrastructure/database/redis/cart_store.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jsephandrade/technomart-mobile-app/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

const (
	cartKeyPrefix    = "cart:session:"
	maxUpdateRetries = 5
)

// CartStore keeps cart snapshots in Redis as JSON with a sliding TTL
type CartStore struct {
	client *Client
	ttl    time.Duration
	now    func() time.Time
}

// NewCartStore creates a Redis cart store; a zero ttl keeps carts forever
func NewCartStore(client *Client, ttl time.Duration) *CartStore {
	return &CartStore{
		client: client,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func cartKey(owner string) string {
	return cartKeyPrefix + owner
}

func (s *CartStore) Load(ctx context.Context, owner string) (*cart.Snapshot, error) {
	var snapshot cart.Snapshot
	found, err := s.client.GetJSON(ctx, cartKey(owner), &snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !found {
		return cart.NewSnapshot(owner, s.now()), nil
	}
	return normalize(&snapshot, owner), nil
}

// Update runs fn inside an optimistic WATCH/MULTI transaction and retries on conflicts
func (s *CartStore) Update(ctx context.Context, owner string, fn func(*cart.Snapshot) error) (*cart.Snapshot, error) {
	key := cartKey(owner)
	var result *cart.Snapshot

	txf := func(tx *redis.Tx) error {
		snapshot := cart.NewSnapshot(owner, s.now())

		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		default:
			var stored cart.Snapshot
			if err := json.Unmarshal(data, &stored); err != nil {
				return fmt.Errorf("failed to decode cart: %w", err)
			}
			snapshot = normalize(&stored, owner)
		}

		if err := fn(snapshot); err != nil {
			return err
		}

		encoded, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to encode cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err == nil {
			result = snapshot
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := s.client.Redis.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts", cart.ErrConcurrentUpdate, maxUpdateRetries)
}

func (s *CartStore) Delete(ctx context.Context, owner string) error {
	if err := s.client.Del(ctx, cartKey(owner)); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func normalize(snapshot *cart.Snapshot, owner string) *cart.Snapshot {
	snapshot.Owner = owner
	if snapshot.Items == nil {
		snapshot.Items = []cart.LineItem{}
	}
	return snapshot
}
