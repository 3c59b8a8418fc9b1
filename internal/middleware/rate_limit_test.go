package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/api/internal/ratelimit"
)

func loginRequest(body string) *http.Request {
	r := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.RemoteAddr = "203.0.113.7:50000"
	return r
}

func TestLoginRateLimit_RestoresBodyForHandler(t *testing.T) {
	limiter := ratelimit.NewLoginLimiter(ratelimit.DefaultConfig())

	var handlerBody string
	handler := LoginRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		handlerBody = string(b)
	}))

	body := `{"email":"jane@example.com","password":"secret"}`
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, handlerBody)
}

func TestLoginRateLimit_BlocksAfterLimit(t *testing.T) {
	limiter := ratelimit.NewLoginLimiter(ratelimit.Config{
		Window:        time.Minute,
		MaxAttempts:   2,
		BlockDuration: 5 * time.Minute,
	})

	handler := LoginRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	body := `{"email":"jane@example.com","password":"wrong"}`
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, loginRequest(body))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest(body))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "300", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many login attempts. Please try again later.")
}

func TestLoginRateLimit_KeysAreIndependent(t *testing.T) {
	limiter := ratelimit.NewLoginLimiter(ratelimit.Config{
		Window:        time.Minute,
		MaxAttempts:   1,
		BlockDuration: 5 * time.Minute,
	})

	handler := LoginRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest(`{"email":"jane@example.com"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest(`{"email":"jane@example.com"}`))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Same IP, different account: separate bucket.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest(`{"email":"john@example.com"}`))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRateLimit_MalformedBodyStillThrottled(t *testing.T) {
	limiter := ratelimit.NewLoginLimiter(ratelimit.Config{
		Window:        time.Minute,
		MaxAttempts:   1,
		BlockDuration: 5 * time.Minute,
	})

	handler := LoginRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	// Unparseable bodies fall into the per-IP bucket with no email.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest(`not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest(`not json`))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
