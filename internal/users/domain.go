package users

import "time"

// User represents an account with access to one of the role dashboards.
// Salesmen register unapproved and must be approved by an admin before
// they can sign in; admins are approved from the start.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	IsApproved   bool      `json:"isApproved"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest carries a new account registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Role     string `json:"role" validate:"required,oneof=admin salesman"`
	Password string `json:"password" validate:"required,min=6"`
}
