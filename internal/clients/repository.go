package clients

import (
	"context"

	"github.com/wims-erp/wims/internal/platform/localstore"
)

// Repository loads and saves the client snapshot.
type Repository interface {
	Load(ctx context.Context) ([]Client, error)
	Save(ctx context.Context, snapshot []Client) error
}

// SnapshotRepository persists clients under the versioned snapshot key.
type SnapshotRepository struct {
	store *localstore.Store
}

// NewRepository constructs a SnapshotRepository.
func NewRepository(store *localstore.Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

func (r *SnapshotRepository) Load(ctx context.Context) ([]Client, error) {
	var snapshot []Client
	if err := r.store.Load(ctx, localstore.KeyClients, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot []Client) error {
	return r.store.Save(ctx, localstore.KeyClients, snapshot)
}
