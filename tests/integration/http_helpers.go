package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/moodlog/api/internal/auth"
	"github.com/moodlog/api/internal/database"
	"github.com/moodlog/api/internal/handlers"
	middlewareCustom "github.com/moodlog/api/internal/middleware"
	"github.com/moodlog/api/internal/ratelimit"
	"github.com/moodlog/api/internal/repositories"
	"github.com/moodlog/api/internal/routes"
	"github.com/moodlog/api/internal/services"
	"github.com/moodlog/api/internal/session"
)

// TestServer wraps httptest.Server with the full route stack: real database,
// in-memory session store, reset tokens exposed in responses.
type TestServer struct {
	Server   *httptest.Server
	DB       *database.DB
	Sessions *session.MemoryStore
	Limiter  *ratelimit.LoginLimiter

	logger *slog.Logger
}

// NewTestServer initializes a complete HTTP server against the given database
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	sessionStore := session.NewMemoryStore()
	loginLimiter := ratelimit.NewLoginLimiter(ratelimit.DefaultConfig())

	userRepo := repositories.NewUserRepository(db)
	entryRepo := repositories.NewEntryRepository(db)

	authService := services.NewAuthService(userRepo, sessionStore, logger, 2*time.Hour, 15*time.Minute)
	userService := services.NewUserService(userRepo, logger)
	entryService := services.NewEntryService(entryRepo, logger)

	cookieConfig := session.CookieConfig{Secure: false, MaxAge: 2 * time.Hour}

	authHandler := handlers.NewAuthHandler(authService, cookieConfig, true)
	userHandler := handlers.NewUserHandler(userService)
	entryHandler := handlers.NewEntryHandler(entryService)

	gate := auth.NewGate(sessionStore, userRepo, cookieConfig)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, authHandler, userHandler, entryHandler, gate, loginLimiter)

	return &TestServer{
		Server:   httptest.NewServer(r),
		DB:       db,
		Sessions: sessionStore,
		Limiter:  loginLimiter,
		logger:   logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, cookies ...*http.Cookie) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	return http.DefaultClient.Do(req)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// SessionCookie extracts the session cookie from a response, or nil
func SessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	return nil
}

// Login authenticates against the test server and returns the session cookie
func (ts *TestServer) Login(email, password string) (*http.Cookie, error) {
	resp, err := ts.Request("POST", "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	cookie := SessionCookie(resp)
	if cookie == nil {
		return nil, fmt.Errorf("login response carried no session cookie")
	}
	return cookie, nil
}
