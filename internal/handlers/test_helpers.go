package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/moodlog/api/internal/auth"
	"github.com/moodlog/api/internal/models"
	"github.com/moodlog/api/internal/services"
	pkghttp "github.com/moodlog/api/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext attaches a resolved identity to the request context, as
// the session gate would for an authenticated request.
func WithAuthContext(req *http.Request, userID, email, role string) *http.Request {
	identity := &auth.Identity{
		ID:          userID,
		Email:       email,
		Name:        "Test User",
		PhoneNumber: "5551234567",
		CountryCode: "+1",
		Role:        role,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return req.WithContext(auth.WithIdentity(req.Context(), identity, "test-session-token"))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response carries the expected error message
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error message mismatch")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, input services.RegisterInput) (*models.User, error)
	LoginFunc                func(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error)
	LogoutFunc               func(ctx context.Context, sessionToken string) error
	RequestPasswordResetFunc func(ctx context.Context, email string) (string, error)
	ConfirmPasswordResetFunc func(ctx context.Context, token, newPassword, currentSessionToken string) error
	ChangePasswordFunc       func(ctx context.Context, userID, currentPassword, newPassword string) error
}

func (m *MockAuthService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, input)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error) {
	if m.LoginFunc == nil {
		return nil, "", models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password, oldSessionToken)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionToken string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, sessionToken)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if m.RequestPasswordResetFunc == nil {
		return "", nil
	}
	return m.RequestPasswordResetFunc(ctx, email)
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword, currentSessionToken string) error {
	if m.ConfirmPasswordResetFunc == nil {
		return models.ErrBadRequest
	}
	return m.ConfirmPasswordResetFunc(ctx, token, newPassword, currentSessionToken)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc == nil {
		return models.ErrUnauthorized
	}
	return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetUserByIDFunc func(ctx context.Context, id string) (*models.User, error)
	UpdateUserFunc  func(ctx context.Context, id string, update services.UserUpdate) (*models.User, error)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserByIDFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetUserByIDFunc(ctx, id)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id string, update services.UserUpdate) (*models.User, error) {
	if m.UpdateUserFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateUserFunc(ctx, id, update)
}

// MockEntryService implements EntryServiceInterface for testing
type MockEntryService struct {
	CreateEntryFunc func(ctx context.Context, userID, mood string, note *string, recordedAt *time.Time) (*models.Entry, error)
	ListEntriesFunc func(ctx context.Context, userID string) ([]*models.Entry, error)
	GetEntryFunc    func(ctx context.Context, userID, id string) (*models.Entry, error)
	UpdateEntryFunc func(ctx context.Context, userID, id string, update services.EntryUpdate) (*models.Entry, error)
	DeleteEntryFunc func(ctx context.Context, userID, id string) error
}

func (m *MockEntryService) CreateEntry(ctx context.Context, userID, mood string, note *string, recordedAt *time.Time) (*models.Entry, error) {
	if m.CreateEntryFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateEntryFunc(ctx, userID, mood, note, recordedAt)
}

func (m *MockEntryService) ListEntries(ctx context.Context, userID string) ([]*models.Entry, error) {
	if m.ListEntriesFunc == nil {
		return []*models.Entry{}, nil
	}
	return m.ListEntriesFunc(ctx, userID)
}

func (m *MockEntryService) GetEntry(ctx context.Context, userID, id string) (*models.Entry, error) {
	if m.GetEntryFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetEntryFunc(ctx, userID, id)
}

func (m *MockEntryService) UpdateEntry(ctx context.Context, userID, id string, update services.EntryUpdate) (*models.Entry, error) {
	if m.UpdateEntryFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateEntryFunc(ctx, userID, id, update)
}

func (m *MockEntryService) DeleteEntry(ctx context.Context, userID, id string) error {
	if m.DeleteEntryFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteEntryFunc(ctx, userID, id)
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
