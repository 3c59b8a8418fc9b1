package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/moodlog/api/internal/auth"
	"github.com/moodlog/api/internal/models"
	"github.com/moodlog/api/internal/services"
	pkghttp "github.com/moodlog/api/pkg/http"
)

// UserServiceInterface defines the interface for user business logic
type UserServiceInterface interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, update services.UserUpdate) (*models.User, error)
}

// UserHandler handles user account HTTP requests
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateUserRequest represents the request body for a partial user update.
// Absent fields are left untouched.
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	Name        *string `json:"name" validate:"omitempty,min=1"`
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,phone"`
	CountryCode *string `json:"countryCode" validate:"omitempty,countrycode"`
	Role        *string `json:"role" validate:"omitempty"`
	Password    *string `json:"password" validate:"omitempty,min=8"`
}

func (r UpdateUserRequest) empty() bool {
	return r.Email == nil && r.Name == nil && r.DisplayName == nil &&
		r.PhoneNumber == nil && r.CountryCode == nil && r.Role == nil &&
		r.Password == nil
}

// GetMe returns the caller's own account.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, identityToUserResponse(identity))
}

// GetUser returns a user account by id. Admin only.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid user id")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUser applies a partial update to a user account. Admin only.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.empty() {
		pkghttp.WriteBadRequest(w, "No fields provided to update")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if req.Role != nil && !models.ValidRole(*req.Role) {
		pkghttp.WriteBadRequest(w, "Invalid role")
		return
	}

	// A phone number is meaningless without its dialing code; require the
	// pair to move together.
	if req.PhoneNumber != nil && req.CountryCode == nil {
		pkghttp.WriteBadRequest(w, "countryCode is required when updating phoneNumber")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		pkghttp.WriteBadRequest(w, "Name must not be blank")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, services.UserUpdate{
		Email:       req.Email,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		PhoneNumber: req.PhoneNumber,
		CountryCode: req.CountryCode,
		Role:        req.Role,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid user id")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with that email or phone number already exists")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
