package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie; the value is the opaque store token.
const CookieName = "sid"

// CookieConfig holds session cookie settings
type CookieConfig struct {
	Secure bool          // HTTPS only; on in production
	MaxAge time.Duration // matches the session TTL
}

// SetCookie writes the session cookie. httpOnly keeps the token away from
// JavaScript; SameSite=Lax blocks cross-site POSTs from carrying it.
func SetCookie(w http.ResponseWriter, token string, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(config.MaxAge.Seconds()),
		Expires:  time.Now().Add(config.MaxAge),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie deletes the session cookie on the client.
func ClearCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the session token from the request cookie, or ""
// when no session cookie is present.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
