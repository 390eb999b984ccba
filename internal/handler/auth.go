package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ecofinds/marketplace-api/internal/domain/user"
)

// tokenTTL is the lifetime of issued bearer tokens.
const tokenTTL = 24 * time.Hour

// identityKey is the context key for the authenticated user.
type identityKey struct{}

// identityFrom extracts the authenticated user from the context.
func identityFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(identityKey{}).(*user.User)
	return u, ok
}

// tokenIssuer signs and verifies HS256 bearer tokens whose subject is the
// user id.
type tokenIssuer struct {
	secret []byte
}

func newTokenIssuer(secret []byte) *tokenIssuer {
	return &tokenIssuer{secret: secret}
}

func (t *tokenIssuer) issue(u *user.User, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func (t *tokenIssuer) subject(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "parse token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// authenticate is a middleware that resolves the bearer token to a user
// and stores it in the request context. Requests without a valid token
// never reach the core.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := h.tokens.subject(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		u, err := h.userRepo.GetByID(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// registerRequest is the JSON body for account creation.
type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse carries the issued token plus the account's public fields.
type authResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), user.RegisterRequest{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.writeAuthResponse(w, http.StatusCreated, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.writeAuthResponse(w, http.StatusOK, u)
}

// profileResponse is the account view returned to its owner.
type profileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// profile returns the caller's own account. The identity middleware loads
// the user fresh on every request, so no extra lookup is needed here.
func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        caller.ID,
		Email:     caller.Email,
		Username:  caller.Username,
		FullName:  caller.FullName,
		Phone:     caller.Phone,
		Role:      string(caller.Role),
		CreatedAt: caller.CreatedAt,
	})
}

func (h *Handler) writeAuthResponse(w http.ResponseWriter, status int, u *user.User) {
	token, err := h.tokens.issue(u, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, status, authResponse{
		Token:    token,
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		Role:     string(u.Role),
	})
}
