package handlers

import (
	"time"

	"github.com/moodlog/api/internal/auth"
	"github.com/moodlog/api/internal/models"
)

// UserResponse is the public wire shape of a user account. Password hashes
// and reset-token state never leave the server.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	DisplayName *string   `json:"displayName,omitempty"`
	PhoneNumber string    `json:"phoneNumber"`
	CountryCode string    `json:"countryCode"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MessageResponse wraps a human-readable outcome message.
type MessageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		DisplayName: user.DisplayName,
		PhoneNumber: user.PhoneNumber,
		CountryCode: user.CountryCode,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func identityToUserResponse(identity *auth.Identity) UserResponse {
	return UserResponse{
		ID:          identity.ID,
		Email:       identity.Email,
		Name:        identity.Name,
		DisplayName: identity.DisplayName,
		PhoneNumber: identity.PhoneNumber,
		CountryCode: identity.CountryCode,
		Role:        identity.Role,
		CreatedAt:   identity.CreatedAt,
		UpdatedAt:   identity.UpdatedAt,
	}
}

// EntryResponse is the wire shape of a mood entry.
type EntryResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Mood       string    `json:"mood"`
	Note       *string   `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toEntryResponse(entry *models.Entry) EntryResponse {
	return EntryResponse{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Mood:       entry.Mood,
		Note:       entry.Note,
		RecordedAt: entry.RecordedAt,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}
}
