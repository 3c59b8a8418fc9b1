package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/api/internal/models"
)

func sampleEntry(userID string) *models.Entry {
	note := "long day"
	return &models.Entry{
		ID:         "entry1",
		UserID:     userID,
		Mood:       "tired",
		Note:       &note,
		RecordedAt: time.Now(),
	}
}

func TestCreateEntry_TrimsNoteAndScopesToUser(t *testing.T) {
	var created *models.Entry
	entries := &MockEntryRepository{
		CreateFunc: func(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
			created = entry
			entry.ID = "entry1"
			return entry, nil
		},
	}
	svc := NewEntryService(entries, testLogger())

	note := "  long day  "
	entry, err := svc.CreateEntry(context.Background(), "user123", "tired", &note, nil)

	require.NoError(t, err)
	assert.Equal(t, "entry1", entry.ID)
	assert.Equal(t, "user123", created.UserID)
	require.NotNil(t, created.Note)
	assert.Equal(t, "long day", *created.Note)
}

func TestGetEntry_MalformedIDIsBadRequest(t *testing.T) {
	entries := &MockEntryRepository{
		GetByIDFunc: func(ctx context.Context, userID, id string) (*models.Entry, error) {
			return nil, models.ErrBadRequest
		},
	}
	svc := NewEntryService(entries, testLogger())

	_, err := svc.GetEntry(context.Background(), "user123", "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestCreateEntry_ExplicitRecordedAt(t *testing.T) {
	recorded := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	var created *models.Entry
	entries := &MockEntryRepository{
		CreateFunc: func(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
			created = entry
			return entry, nil
		},
	}
	svc := NewEntryService(entries, testLogger())

	_, err := svc.CreateEntry(context.Background(), "user123", "happy", nil, &recorded)
	require.NoError(t, err)
	assert.Equal(t, recorded, created.RecordedAt)
}

func TestGetEntry_NotFound(t *testing.T) {
	svc := NewEntryService(&MockEntryRepository{}, testLogger())

	_, err := svc.GetEntry(context.Background(), "user123", "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateEntry_PartialUpdate(t *testing.T) {
	existing := sampleEntry("user123")
	var persisted *models.Entry
	entries := &MockEntryRepository{
		GetByIDFunc: func(ctx context.Context, userID, id string) (*models.Entry, error) {
			return existing, nil
		},
		UpdateFunc: func(ctx context.Context, userID string, entry *models.Entry) (*models.Entry, error) {
			persisted = entry
			return entry, nil
		},
	}
	svc := NewEntryService(entries, testLogger())

	mood := "calm"
	updated, err := svc.UpdateEntry(context.Background(), "user123", "entry1", EntryUpdate{Mood: &mood})

	require.NoError(t, err)
	assert.Equal(t, "calm", updated.Mood)
	// Note untouched.
	require.NotNil(t, persisted.Note)
	assert.Equal(t, "long day", *persisted.Note)
}

func TestUpdateEntry_NotFound(t *testing.T) {
	svc := NewEntryService(&MockEntryRepository{}, testLogger())

	mood := "calm"
	_, err := svc.UpdateEntry(context.Background(), "user123", "ghost", EntryUpdate{Mood: &mood})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	entries := &MockEntryRepository{
		DeleteFunc: func(ctx context.Context, userID, id string) error {
			return models.ErrNotFound
		},
	}
	svc := NewEntryService(entries, testLogger())

	err := svc.DeleteEntry(context.Background(), "user123", "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
