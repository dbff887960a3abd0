package users

import (
	"context"

	"github.com/wims-erp/wims/internal/platform/localstore"
)

// Repository loads and saves the user snapshot.
type Repository interface {
	Load(ctx context.Context) ([]User, error)
	Save(ctx context.Context, snapshot []User) error
}

// SnapshotRepository persists users under the versioned snapshot key.
type SnapshotRepository struct {
	store *localstore.Store
}

// NewRepository constructs a SnapshotRepository.
func NewRepository(store *localstore.Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

func (r *SnapshotRepository) Load(ctx context.Context) ([]User, error) {
	var snapshot []User
	if err := r.store.Load(ctx, localstore.KeyUsers, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot []User) error {
	return r.store.Save(ctx, localstore.KeyUsers, snapshot)
}
