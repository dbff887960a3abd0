package orders

import (
	"context"

	"github.com/wims-erp/wims/internal/platform/localstore"
)

// Repository loads and saves the order snapshot.
type Repository interface {
	Load(ctx context.Context) ([]Order, error)
	Save(ctx context.Context, snapshot []Order) error
}

// SnapshotRepository persists orders under the versioned snapshot key.
type SnapshotRepository struct {
	store *localstore.Store
}

// NewRepository constructs a SnapshotRepository.
func NewRepository(store *localstore.Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

func (r *SnapshotRepository) Load(ctx context.Context) ([]Order, error) {
	var snapshot []Order
	if err := r.store.Load(ctx, localstore.KeyOrders, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot []Order) error {
	return r.store.Save(ctx, localstore.KeyOrders, snapshot)
}
