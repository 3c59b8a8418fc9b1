// Package session implements server-side sessions keyed by an opaque cookie
// token. The token carries no state; everything lives in the store, so
// destroying the record is a hard logout.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

const tokenBytes = 32 // 256 bits

// Store persists session state keyed by token. Implementations must treat a
// missing token as models.ErrSessionNotFound.
type Store interface {
	// Create generates a fresh token, persists token -> userID with the
	// given TTL, and returns the token. The write completes before Create
	// returns.
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)

	// Get resolves a token to the stored userID.
	Get(ctx context.Context, token string) (string, error)

	// Delete removes a session. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}

// generateToken returns a URL-safe random session token.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
