package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/moodlog/api/internal/models"
)

// EntryRepository defines the interface for mood entry data access. All
// operations are scoped to the owning user.
type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Entry, error)
	GetByID(ctx context.Context, userID, id string) (*models.Entry, error)
	Update(ctx context.Context, userID string, entry *models.Entry) (*models.Entry, error)
	Delete(ctx context.Context, userID, id string) error
}

// EntryService handles mood-journal business logic. It trusts the userID
// resolved by the authorization gate and never widens the scope beyond it.
type EntryService struct {
	entries EntryRepository
	logger  *slog.Logger
}

func NewEntryService(entries EntryRepository, logger *slog.Logger) *EntryService {
	return &EntryService{entries: entries, logger: logger}
}

// EntryUpdate carries a partial update; nil fields are left untouched.
type EntryUpdate struct {
	Mood       *string
	Note       *string
	RecordedAt *time.Time
}

func (u EntryUpdate) Empty() bool {
	return u.Mood == nil && u.Note == nil && u.RecordedAt == nil
}

func (s *EntryService) CreateEntry(ctx context.Context, userID, mood string, note *string, recordedAt *time.Time) (*models.Entry, error) {
	entry := &models.Entry{
		UserID: userID,
		Mood:   mood,
	}
	if note != nil {
		trimmed := strings.TrimSpace(*note)
		entry.Note = &trimmed
	}
	if recordedAt != nil {
		entry.RecordedAt = *recordedAt
	}

	created, err := s.entries.Create(ctx, entry)
	if err != nil {
		s.logger.Error("failed to create entry", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("entry created", slog.String("entry_id", created.ID), slog.String("user_id", userID))
	return created, nil
}

func (s *EntryService) ListEntries(ctx context.Context, userID string) ([]*models.Entry, error) {
	entries, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list entries", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return entries, nil
}

func (s *EntryService) GetEntry(ctx context.Context, userID, id string) (*models.Entry, error) {
	entry, err := s.entries.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
			return nil, err
		}
		s.logger.Error("failed to get entry", slog.String("entry_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return entry, nil
}

func (s *EntryService) UpdateEntry(ctx context.Context, userID, id string, update EntryUpdate) (*models.Entry, error) {
	entry, err := s.entries.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
			return nil, err
		}
		s.logger.Error("failed to get entry", slog.String("entry_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if update.Mood != nil {
		entry.Mood = *update.Mood
	}
	if update.Note != nil {
		trimmed := strings.TrimSpace(*update.Note)
		entry.Note = &trimmed
	}
	if update.RecordedAt != nil {
		entry.RecordedAt = *update.RecordedAt
	}

	updated, err := s.entries.Update(ctx, userID, entry)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update entry", slog.String("entry_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("entry updated", slog.String("entry_id", id), slog.String("user_id", userID))
	return updated, nil
}

func (s *EntryService) DeleteEntry(ctx context.Context, userID, id string) error {
	if err := s.entries.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
			return err
		}
		s.logger.Error("failed to delete entry", slog.String("entry_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("entry deleted", slog.String("entry_id", id), slog.String("user_id", userID))
	return nil
}
