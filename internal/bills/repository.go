package bills

import (
	"context"

	"github.com/wims-erp/wims/internal/platform/localstore"
)

// Repository loads and saves the bill snapshot.
type Repository interface {
	Load(ctx context.Context) ([]Bill, error)
	Save(ctx context.Context, snapshot []Bill) error
}

// SnapshotRepository persists bills under the versioned snapshot key.
type SnapshotRepository struct {
	store *localstore.Store
}

// NewRepository constructs a SnapshotRepository.
func NewRepository(store *localstore.Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

func (r *SnapshotRepository) Load(ctx context.Context) ([]Bill, error) {
	var snapshot []Bill
	if err := r.store.Load(ctx, localstore.KeyBills, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot []Bill) error {
	return r.store.Save(ctx, localstore.KeyBills, snapshot)
}
