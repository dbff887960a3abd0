package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/wims-erp/wims/internal/shared"
	"github.com/wims-erp/wims/internal/users"
)

// Directory resolves accounts for authentication.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	directory Directory
}

// NewService constructs a new Service.
func NewService(directory Directory) *Service {
	return &Service{directory: directory}
}

// Authenticate validates email/password credentials. Unapproved salesmen
// are refused until an admin approves the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if user.Role == shared.RoleSalesman && !user.IsApproved {
		return nil, fmt.Errorf("%w: account pending admin approval", shared.ErrForbidden)
	}
	return user, nil
}
