// Package user holds marketplace accounts and the identity contract used
// to resolve buyers and sellers.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for identity lookups and registration.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Role distinguishes the primary activity of an account. Buyers may still
// sell and sellers may still buy; the role drives defaults such as which
// order listing a user sees.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// User is a marketplace account. PasswordHash is a bcrypt hash and never
// leaves the storage and auth layers.
type User struct {
	ID           string
	Email        string
	Username     string
	FullName     string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Repository defines identity persistence.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
}
