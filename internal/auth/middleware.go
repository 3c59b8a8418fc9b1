package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/moodlog/api/internal/models"
	"github.com/moodlog/api/internal/session"
	pkghttp "github.com/moodlog/api/pkg/http"
)

// UserGetter is the slice of the user repository the gate needs.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Gate resolves session cookies to identities in front of protected routes.
type Gate struct {
	sessions session.Store
	users    UserGetter
	cookies  session.CookieConfig
}

func NewGate(sessions session.Store, users UserGetter, cookies session.CookieConfig) *Gate {
	return &Gate{sessions: sessions, users: users, cookies: cookies}
}

// resolve authenticates the request: cookie -> session -> user. On success
// it returns the request with the sanitized identity and session token in
// context. A session pointing at a deleted user is destroyed before the 401.
func (g *Gate) resolve(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	token := session.TokenFromRequest(r)
	if token == "" {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return nil, false
	}

	userID, err := g.sessions.Get(r.Context(), token)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			pkghttp.WriteUnauthorized(w, "Not authenticated")
			return nil, false
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return nil, false
	}

	user, err := g.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// User deleted mid-session: the session is garbage, drop it.
			_ = g.sessions.Delete(r.Context(), token)
			session.ClearCookie(w, g.cookies)
			pkghttp.WriteUnauthorized(w, "Not authenticated")
			return nil, false
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return nil, false
	}

	ctx := WithIdentity(r.Context(), identityFromUser(user), token)
	return r.WithContext(ctx), true
}

// RequireAuth admits only requests carrying a valid session.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, ok := g.resolve(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, resolved)
	})
}

// RequireAdmin admits only sessions whose user holds the admin role. It
// performs identity resolution itself and then the role check, as one
// inseparable middleware: attaching it cannot bypass authentication
// regardless of call-site ordering.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved, ok := g.resolve(w, r)
		if !ok {
			return
		}

		identity := IdentityFromRequest(resolved)
		if identity == nil || !identity.IsAdmin() {
			pkghttp.WriteForbidden(w, "Admin access required")
			return
		}

		next.ServeHTTP(w, resolved)
	})
}
