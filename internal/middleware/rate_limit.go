package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/moodlog/api/internal/ratelimit"
	pkghttp "github.com/moodlog/api/pkg/http"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultResetRateLimit returns the rate limit config for the password
// reset request endpoint (5 requests per minute per IP).
func DefaultResetRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 5,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Rate limit exceeded"}`))
		}),
	)
}

// maxLoginPeekBytes bounds how much of the login body the limiter will
// buffer to extract the email.
const maxLoginPeekBytes = 1 << 16

// LoginRateLimit throttles login attempts keyed by (client IP, submitted
// email). The body is peeked for the email and restored so the handler can
// decode it again; a request the limiter blocks never reaches password
// verification and does not count as a new attempt.
func LoginRateLimit(limiter *ratelimit.LoginLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginPeekBytes))
			if err != nil {
				pkghttp.WriteBadRequest(w, "Invalid request body")
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			// A malformed body still consumes an attempt for this IP; the
			// handler produces the actual 400.
			var payload struct {
				Email string `json:"email"`
			}
			_ = json.Unmarshal(body, &payload)

			key := ratelimit.Key(pkghttp.ClientIP(r), payload.Email)
			allowed, retryAfter := limiter.Allow(key)
			if !allowed {
				pkghttp.WriteTooManyRequests(w, "Too many login attempts. Please try again later.", retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
