package users

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wims-erp/wims/internal/shared"
)

// Service handles user accounts. Mutations take the service mutex and
// rewrite the whole snapshot, keeping memory and storage in step.
type Service struct {
	repo Repository
	mu   sync.Mutex
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new account. Salesmen start unapproved; admins are
// approved immediately.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	for _, u := range snapshot {
		if strings.EqualFold(u.Email, email) {
			return nil, fmt.Errorf("%w: email already registered", shared.ErrDuplicate)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
		IsApproved:   req.Role == shared.RoleAdmin,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	snapshot = append(snapshot, user)
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}
	return &user, nil
}

// Approve marks a salesman account as approved.
func (s *Service) Approve(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for i := range snapshot {
		if snapshot[i].ID != id {
			continue
		}
		snapshot[i].IsApproved = true
		if err := s.repo.Save(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("save users: %w", err)
		}
		user := snapshot[i]
		return &user, nil
	}
	return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for i := range snapshot {
		if snapshot[i].ID == id {
			user := snapshot[i]
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
}

// FindByEmail retrieves a user by email, case-insensitive.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for i := range snapshot {
		if strings.EqualFold(snapshot[i].Email, strings.TrimSpace(email)) {
			user := snapshot[i]
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, email)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.Load(ctx)
}
