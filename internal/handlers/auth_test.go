package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/api/internal/models"
	"github.com/moodlog/api/internal/services"
	"github.com/moodlog/api/internal/session"
)

func testCookieConfig() session.CookieConfig {
	return session.CookieConfig{Secure: false, MaxAge: 2 * time.Hour}
}

func sampleUser() *models.User {
	return &models.User{
		ID:          "user123",
		Email:       "jane@example.com",
		Name:        "Jane Doe",
		PhoneNumber: "5551234567",
		CountryCode: "+1",
		Role:        models.RoleUser,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestRegister_Success(t *testing.T) {
	mock := &MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*models.User, error) {
			assert.Equal(t, "jane@example.com", input.Email)
			assert.Equal(t, "5551234567", input.PhoneNumber)
			return sampleUser(), nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/register", RegisterRequest{
		Email:       "jane@example.com",
		Password:    "correct-horse",
		Name:        "Jane Doe",
		PhoneNumber: "5551234567",
		CountryCode: "+1",
	})
	w := httptest.NewRecorder()
	handler.Register(w, req)

	var resp AuthResponse
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "user123", resp.User.ID)
	assert.Equal(t, "jane@example.com", resp.User.Email)
}

func TestRegister_Conflict(t *testing.T) {
	mock := &MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/register", RegisterRequest{
		Email:       "jane@example.com",
		Password:    "correct-horse",
		Name:        "Jane Doe",
		PhoneNumber: "5551234567",
		CountryCode: "+1",
	})
	w := httptest.NewRecorder()
	handler.Register(w, req)

	AssertErrorResponse(t, w, http.StatusConflict, "An account with that email or phone number already exists")
}

func TestRegister_Validation(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, testCookieConfig(), false)

	tests := []struct {
		name string
		body RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "correct-horse", Name: "J", PhoneNumber: "5551234567", CountryCode: "+1"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "correct-horse", Name: "J", PhoneNumber: "5551234567", CountryCode: "+1"}},
		{"short password", RegisterRequest{Email: "j@x.com", Password: "short", Name: "J", PhoneNumber: "5551234567", CountryCode: "+1"}},
		{"bad phone", RegisterRequest{Email: "j@x.com", Password: "correct-horse", Name: "J", PhoneNumber: "123", CountryCode: "+1"}},
		{"bad country code", RegisterRequest{Email: "j@x.com", Password: "correct-horse", Name: "J", PhoneNumber: "5551234567", CountryCode: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewTestRequest(t, "POST", "/auth/register", tt.body)
			w := httptest.NewRecorder()
			handler.Register(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_TrimsPaddedInput(t *testing.T) {
	mock := &MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*models.User, error) {
			assert.Equal(t, "jane@example.com", input.Email)
			assert.Equal(t, "Jane Doe", input.Name)
			assert.Equal(t, "5551234567", input.PhoneNumber)
			assert.Equal(t, "+1", input.CountryCode)
			return sampleUser(), nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/register", RegisterRequest{
		Email:       " jane@example.com ",
		Password:    "correct-horse",
		Name:        " Jane Doe ",
		PhoneNumber: " 5551234567 ",
		CountryCode: " +1 ",
	})
	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error) {
			assert.Empty(t, oldSessionToken)
			return sampleUser(), "fresh-token", nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{
		Email:    "jane@example.com",
		Password: "correct-horse",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp AuthResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Login successful", resp.Message)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "fresh-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestLogin_PassesExistingCookieForRegeneration(t *testing.T) {
	var gotOldToken string
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error) {
			gotOldToken = oldSessionToken
			return sampleUser(), "fresh-token", nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{
		Email:    "jane@example.com",
		Password: "correct-horse",
	})
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale-token"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stale-token", gotOldToken)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Equal(t, "fresh-token", cookie.Value)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error) {
			return nil, "", models.ErrUnauthorized
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid email or password")
	assert.Nil(t, sessionCookie(w))
}

func TestLogin_MalformedEmailGetsSame401(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error) {
			// No such account; the lookup fails like any wrong credential.
			return nil, "", models.ErrUnauthorized
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{
		Email:    "not-an-email",
		Password: "correct-horse",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid email or password")
}

func TestLogin_SessionStoreFailureFailsLogin(t *testing.T) {
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error) {
			return nil, "", models.ErrInternalServer
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{
		Email:    "jane@example.com",
		Password: "correct-horse",
	})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, sessionCookie(w))
}

func TestLogout_DestroysSessionAndClearsCookie(t *testing.T) {
	var destroyed string
	mock := &MockAuthService{
		LogoutFunc: func(ctx context.Context, sessionToken string) error {
			destroyed = sessionToken
			return nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "live-token"})
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "live-token", destroyed)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestLogout_NoCookieIsIdempotent(t *testing.T) {
	called := false
	mock := &MockAuthService{
		LogoutFunc: func(ctx context.Context, sessionToken string) error {
			called = true
			return nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	w := httptest.NewRecorder()
	handler.Logout(w, NewTestRequest(t, "POST", "/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called)
}

func TestRequestPasswordReset_GenericResponseEitherWay(t *testing.T) {
	for _, token := range []string{"raw-reset-token", ""} {
		mock := &MockAuthService{
			RequestPasswordResetFunc: func(ctx context.Context, email string) (string, error) {
				return token, nil
			},
		}
		handler := NewAuthHandler(mock, testCookieConfig(), false)

		req := NewTestRequest(t, "POST", "/auth/password-reset/request", ResetRequestRequest{Email: "jane@example.com"})
		w := httptest.NewRecorder()
		handler.RequestPasswordReset(w, req)

		var resp ResetRequestResponse
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, "If that account exists, a password reset email has been sent.", resp.Message)
		assert.Empty(t, resp.ResetToken)
	}
}

func TestRequestPasswordReset_ExposesTokenOutsideProduction(t *testing.T) {
	mock := &MockAuthService{
		RequestPasswordResetFunc: func(ctx context.Context, email string) (string, error) {
			return "raw-reset-token", nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), true)

	req := NewTestRequest(t, "POST", "/auth/password-reset/request", ResetRequestRequest{Email: "jane@example.com"})
	w := httptest.NewRecorder()
	handler.RequestPasswordReset(w, req)

	var resp ResetRequestResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "raw-reset-token", resp.ResetToken)
}

func TestConfirmPasswordReset_Success(t *testing.T) {
	mock := &MockAuthService{
		ConfirmPasswordResetFunc: func(ctx context.Context, token, newPassword, currentSessionToken string) error {
			assert.Equal(t, "raw-reset-token", token)
			assert.Equal(t, "new-password-1", newPassword)
			return nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/password-reset/confirm", ResetConfirmRequest{
		Token:       "raw-reset-token",
		NewPassword: "new-password-1",
	})
	w := httptest.NewRecorder()
	handler.ConfirmPasswordReset(w, req)

	var resp MessageResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Password has been reset", resp.Message)
}

func TestConfirmPasswordReset_InvalidToken(t *testing.T) {
	mock := &MockAuthService{
		ConfirmPasswordResetFunc: func(ctx context.Context, token, newPassword, currentSessionToken string) error {
			return models.ErrBadRequest
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/password-reset/confirm", ResetConfirmRequest{
		Token:       "bogus",
		NewPassword: "new-password-1",
	})
	w := httptest.NewRecorder()
	handler.ConfirmPasswordReset(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "Invalid or expired reset token")
}

func TestConfirmPasswordReset_ClearsCallerCookie(t *testing.T) {
	var gotSession string
	mock := &MockAuthService{
		ConfirmPasswordResetFunc: func(ctx context.Context, token, newPassword, currentSessionToken string) error {
			gotSession = currentSessionToken
			return nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/password-reset/confirm", ResetConfirmRequest{
		Token:       "raw-reset-token",
		NewPassword: "new-password-1",
	})
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "live-token"})
	w := httptest.NewRecorder()
	handler.ConfirmPasswordReset(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "live-token", gotSession)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestChangePassword_Success(t *testing.T) {
	mock := &MockAuthService{
		ChangePasswordFunc: func(ctx context.Context, userID, currentPassword, newPassword string) error {
			assert.Equal(t, "user123", userID)
			return nil
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := WithAuthContext(NewTestRequest(t, "POST", "/auth/password/change", ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	}), "user123", "jane@example.com", models.RoleUser)
	w := httptest.NewRecorder()
	handler.ChangePassword(w, req)

	var resp MessageResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Password changed successfully", resp.Message)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	mock := &MockAuthService{
		ChangePasswordFunc: func(ctx context.Context, userID, currentPassword, newPassword string) error {
			return models.ErrUnauthorized
		},
	}
	handler := NewAuthHandler(mock, testCookieConfig(), false)

	req := WithAuthContext(NewTestRequest(t, "POST", "/auth/password/change", ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "battery-staple",
	}), "user123", "jane@example.com", models.RoleUser)
	w := httptest.NewRecorder()
	handler.ChangePassword(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "Current password is incorrect")
}

func TestChangePassword_Unauthenticated(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, testCookieConfig(), false)

	req := NewTestRequest(t, "POST", "/auth/password/change", ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	})
	w := httptest.NewRecorder()
	handler.ChangePassword(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_ReturnsIdentity(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, testCookieConfig(), false)

	req := WithAuthContext(NewTestRequest(t, "GET", "/auth/me", nil), "user123", "jane@example.com", models.RoleUser)
	w := httptest.NewRecorder()
	handler.Me(w, req)

	var resp UserResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "user123", resp.ID)
	assert.Equal(t, "jane@example.com", resp.Email)
}
