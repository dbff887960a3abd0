// Package localstore persists whole JSON snapshots under versioned keys,
// mirroring the browser local-storage layout the dashboards were built
// against (one JSON array per key, rewritten on every mutation).
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wims-erp/wims/internal/shared"
)

// Versioned snapshot keys. Bump the suffix when the payload shape changes.
const (
	KeyUsers   = "wims-users-v4"
	KeyClients = "wims-clients-v4"
	KeyOrders  = "wims-orders-v4"
	KeyBills   = "wims-bills-v4"
)

// Store reads and writes JSON snapshots in Redis.
type Store struct {
	client *redis.Client
}

// New constructs a Store.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Load unmarshals the snapshot stored under key into dest. A missing key
// leaves dest untouched, so callers start from the empty snapshot.
func (s *Store) Load(ctx context.Context, key string, dest any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: load %s: %v", shared.ErrPersistence, key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: decode %s: %v", shared.ErrPersistence, key, err)
	}
	return nil
}

// Save marshals value and rewrites the snapshot under key. The write is
// the transaction boundary: a failed save fails the whole operation.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrPersistence, key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: save %s: %v", shared.ErrPersistence, key, err)
	}
	return nil
}

// Delete removes the snapshot under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: delete %s: %v", shared.ErrPersistence, key, err)
	}
	return nil
}
