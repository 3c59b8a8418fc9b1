package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moodlog/api/internal/auth"
	"github.com/moodlog/api/internal/models"
	"github.com/moodlog/api/internal/services"
	pkghttp "github.com/moodlog/api/pkg/http"
)

// EntryServiceInterface defines the interface for mood entry business logic
type EntryServiceInterface interface {
	CreateEntry(ctx context.Context, userID, mood string, note *string, recordedAt *time.Time) (*models.Entry, error)
	ListEntries(ctx context.Context, userID string) ([]*models.Entry, error)
	GetEntry(ctx context.Context, userID, id string) (*models.Entry, error)
	UpdateEntry(ctx context.Context, userID, id string, update services.EntryUpdate) (*models.Entry, error)
	DeleteEntry(ctx context.Context, userID, id string) error
}

// EntryHandler handles mood entry HTTP requests. Every operation is scoped
// to the authenticated caller; entry ids belonging to other users behave
// exactly like ids that do not exist.
type EntryHandler struct {
	service EntryServiceInterface
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(service EntryServiceInterface) *EntryHandler {
	return &EntryHandler{service: service}
}

// CreateEntryRequest represents the request body for creating a mood entry
type CreateEntryRequest struct {
	Mood       string     `json:"mood" validate:"required"`
	Note       *string    `json:"note" validate:"omitempty,max=500"`
	RecordedAt *time.Time `json:"recordedAt"`
}

// UpdateEntryRequest represents the request body for a partial entry update
type UpdateEntryRequest struct {
	Mood       *string    `json:"mood"`
	Note       *string    `json:"note" validate:"omitempty,max=500"`
	RecordedAt *time.Time `json:"recordedAt"`
}

func (r UpdateEntryRequest) empty() bool {
	return r.Mood == nil && r.Note == nil && r.RecordedAt == nil
}

// MoodsResponse lists the moods an entry may carry.
type MoodsResponse struct {
	Moods []string `json:"moods"`
}

func invalidMoodMessage() string {
	return "Invalid mood. Allowed moods: " + strings.Join(models.AllowedMoods, ", ")
}

// writeEntryError maps entry lookup failures onto the wire. A malformed id
// never reaches the table as a uuid, so it surfaces as 400 rather than 500.
func writeEntryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Entry not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid entry id")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// ListMoods returns the allowed mood values.
func (h *EntryHandler) ListMoods(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, MoodsResponse{Moods: models.AllowedMoods})
}

// CreateEntry records a new mood entry for the caller.
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	mood := models.NormalizeMood(req.Mood)
	if mood == "" {
		pkghttp.WriteBadRequest(w, invalidMoodMessage())
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), identity.ID, mood, req.Note, req.RecordedAt)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, toEntryResponse(entry))
}

// ListEntries returns the caller's entries, most recent first.
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	entries, err := h.service.ListEntries(r.Context(), identity.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toEntryResponse(entry))
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// GetEntry returns one of the caller's entries by id.
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	id := chi.URLParam(r, "id")
	entry, err := h.service.GetEntry(r.Context(), identity.ID, id)
	if err != nil {
		writeEntryError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

// UpdateEntry applies a partial update to one of the caller's entries.
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	id := chi.URLParam(r, "id")

	var req UpdateEntryRequest
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

	update := services.EntryUpdate{
		Note:       req.Note,
		RecordedAt: req.RecordedAt,
	}
	if req.Mood != nil {
		mood := models.NormalizeMood(*req.Mood)
		if mood == "" {
			pkghttp.WriteBadRequest(w, invalidMoodMessage())
			return
		}
		update.Mood = &mood
	}

	entry, err := h.service.UpdateEntry(r.Context(), identity.ID, id, update)
	if err != nil {
		writeEntryError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

// DeleteEntry removes one of the caller's entries.
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromRequest(r)
	if identity == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteEntry(r.Context(), identity.ID, id); err != nil {
		writeEntryError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Deletion for entry id %s success", id),
	})
}
