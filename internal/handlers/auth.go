package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/moodlog/api/internal/auth"
	"github.com/moodlog/api/internal/models"
	"github.com/moodlog/api/internal/services"
	"github.com/moodlog/api/internal/session"
	pkghttp "github.com/moodlog/api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, input services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error)
	Logout(ctx context.Context, sessionToken string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword, currentSessionToken string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
	cookies session.CookieConfig

	// Non-production convenience: without an email channel the raw reset
	// token is returned in the response body so the flow stays testable.
	exposeResetToken bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, cookies session.CookieConfig, exposeResetToken bool) *AuthHandler {
	return &AuthHandler{
		service:          service,
		cookies:          cookies,
		exposeResetToken: exposeResetToken,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required,min=1"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	CountryCode string `json:"countryCode" validate:"required,countrycode"`
}

// LoginRequest represents the request body for login. The email is only
// checked for presence; a malformed one simply fails the lookup and gets the
// same 401 as a wrong password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ResetRequestRequest represents the request body for requesting a password reset
type ResetRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetConfirmRequest represents the request body for confirming a password reset
type ResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ChangePasswordRequest represents the request body for changing a password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// Response DTOs

// AuthResponse pairs an outcome message with the affected user.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// ResetRequestResponse is the enumeration-safe reset request acknowledgement.
type ResetRequestResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	// Trim before validating so padded input is judged on its content.
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.CountryCode = strings.TrimSpace(req.CountryCode)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "An account with that email or phone number already exists")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    toUserResponse(user),
	})
}

// Login handles user login. On success the session is regenerated: any
// cookie sent with the request is invalidated and a fresh one is set.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	oldToken := session.TokenFromRequest(r)

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password, oldToken)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	session.SetCookie(w, token, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    toUserResponse(user),
	})
}

// Logout destroys the current session. Requests without a session cookie
// succeed too: logout is idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := session.TokenFromRequest(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			pkghttp.WriteInternalError(w, "Internal server error")
			return
		}
	}

	session.ClearCookie(w, h.cookies)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's own account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, identityToUserResponse(identity))
}

// RequestPasswordReset issues a reset token. The response is identical for
// known and unknown emails so the endpoint cannot be used for enumeration.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequestRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	token, err := h.service.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := ResetRequestResponse{
		Message: "If that account exists, a password reset email has been sent.",
	}
	if h.exposeResetToken {
		resp.ResetToken = token
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetConfirmRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	// If the caller happens to be logged in, that session dies with the
	// old password.
	currentToken := session.TokenFromRequest(r)

	if err := h.service.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword, currentToken); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid or expired reset token")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if currentToken != "" {
		session.ClearCookie(w, h.cookies)
	}
	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password has been reset"})
}

// ChangePassword rotates the password for the authenticated user.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req ChangePasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if strings.TrimSpace(req.NewPassword) == "" {
		pkghttp.WriteBadRequest(w, "New password must not be blank")
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Current password is incorrect")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}
