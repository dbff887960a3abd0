package clients

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wims-erp/wims/internal/shared"
)

// DuplicateError carries the existing record when an advisory duplicate
// check matches, so the caller can offer "use existing" or "overwrite".
type DuplicateError struct {
	Existing Client
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("client %q already exists", e.Existing.Name)
}

func (e *DuplicateError) Unwrap() error { return shared.ErrDuplicate }

// Service provides business logic for the client store.
type Service struct {
	repo Repository
	mu   sync.Mutex
}

// NewService constructs a client service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create normalizes input and inserts a new client. The duplicate check is
// advisory: a case-insensitive exact match on name or email refuses the
// insert with the existing record attached, unless overwrite is set, in
// which case the old record is deleted and a fresh one created.
func (s *Service) Create(ctx context.Context, input ClientInput, createdBy string, overwrite bool) (*Client, error) {
	client, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	if existing := findDuplicate(snapshot, client.Name, client.Email); existing != nil {
		if !overwrite {
			return nil, &DuplicateError{Existing: *existing}
		}
		snapshot = removeByID(snapshot, existing.ID)
	}

	client.ID = uuid.NewString()
	client.CreatedBy = createdBy
	client.CreatedAt = time.Now().UTC()

	snapshot = append(snapshot, client)
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save clients: %w", err)
	}
	return &client, nil
}

// CheckDuplicate runs the advisory lookup without inserting anything.
func (s *Service) CheckDuplicate(ctx context.Context, name, email string) (*Client, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	return findDuplicate(snapshot, name, email), nil
}

// Get retrieves a client by ID.
func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	for i := range snapshot {
		if snapshot[i].ID == id {
			client := snapshot[i]
			return &client, nil
		}
	}
	return nil, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
}

// List returns all clients.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.Load(ctx)
}

// Update normalizes input and replaces the stored fields of an existing
// client, keeping its identity and usage counters.
func (s *Service) Update(ctx context.Context, id string, input ClientInput) (*Client, error) {
	updated, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	for i := range snapshot {
		if snapshot[i].ID != id {
			continue
		}
		updated.ID = snapshot[i].ID
		updated.CreatedBy = snapshot[i].CreatedBy
		updated.CreatedAt = snapshot[i].CreatedAt
		updated.OrderCount = snapshot[i].OrderCount
		updated.LastUsed = snapshot[i].LastUsed
		snapshot[i] = updated
		if err := s.repo.Save(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("save clients: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
}

// RecordOrder bumps the usage counters when an order references a client.
func (s *Service) RecordOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load clients: %w", err)
	}
	for i := range snapshot {
		if snapshot[i].ID != id {
			continue
		}
		now := time.Now().UTC()
		snapshot[i].OrderCount++
		snapshot[i].LastUsed = &now
		if err := s.repo.Save(ctx, snapshot); err != nil {
			return fmt.Errorf("save clients: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
}

func findDuplicate(snapshot []Client, name, email string) *Client {
	for i := range snapshot {
		if strings.EqualFold(snapshot[i].Name, name) {
			match := snapshot[i]
			return &match
		}
		if email != "" && strings.EqualFold(snapshot[i].Email, email) {
			match := snapshot[i]
			return &match
		}
	}
	return nil
}

func removeByID(snapshot []Client, id string) []Client {
	out := snapshot[:0]
	for _, c := range snapshot {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
