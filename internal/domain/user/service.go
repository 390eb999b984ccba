package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest holds the input for creating an account.
type RegisterRequest struct {
	Email    string
	Username string
	FullName string
	Phone    string
	Password string
	Role     Role
}

// Service encapsulates registration and credential checks.
type Service struct {
	users Repository
	now   func() time.Time
}

// NewService creates an identity Service.
func NewService(users Repository) *Service {
	return &Service{users: users, now: time.Now}
}

// Register creates a new account after checking email and username
// uniqueness. The password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Username == "" || req.Password == "" {
		return nil, errors.New("email, username and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check email")
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	role := req.Role
	if role == "" {
		role = RoleBuyer
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     req.Username,
		FullName:     req.FullName,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	return u, nil
}

// Authenticate verifies an email/password pair. Lookup and comparison
// failures both map to ErrInvalidCredentials so callers cannot probe for
// registered emails.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
