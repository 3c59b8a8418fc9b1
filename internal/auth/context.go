package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/moodlog/api/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	identityContextKey contextKey = "identity"
	tokenContextKey    contextKey = "session_token"
)

// Identity is the sanitized view of the authenticated user attached to the
// request context: profile and role only, never the password hash or
// reset-token fields.
type Identity struct {
	ID          string
	Email       string
	Name        string
	DisplayName *string
	PhoneNumber string
	CountryCode string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin reports whether the identity holds the elevated role.
func (i *Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// identityFromUser strips secret fields from a user record.
func identityFromUser(user *models.User) *Identity {
	return &Identity{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		DisplayName: user.DisplayName,
		PhoneNumber: user.PhoneNumber,
		CountryCode: user.CountryCode,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// WithIdentity returns a context carrying a resolved identity and session
// token, as the gate attaches them.
func WithIdentity(ctx context.Context, identity *Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityContextKey, identity)
	return context.WithValue(ctx, tokenContextKey, token)
}

// IdentityFromRequest extracts the resolved identity from the request
// context, or nil outside an authenticated route.
func IdentityFromRequest(r *http.Request) *Identity {
	identity, ok := r.Context().Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// SessionTokenFromRequest returns the session token the gate resolved for
// this request, or "" outside an authenticated route.
func SessionTokenFromRequest(r *http.Request) string {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}
