package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moodlog/api/internal/database"
	"github.com/moodlog/api/internal/models"
)

const entryColumns = `id, user_id, mood, note, recorded_at, created_at, updated_at`

// EntryRepository persists mood-journal entries. Every read and write is
// scoped to the owning user; a foreign entry id behaves like a missing one.
type EntryRepository struct {
	db *database.DB
}

func NewEntryRepository(db *database.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func scanEntryRow(scanner rowScanner) (*models.Entry, error) {
	var entry models.Entry

	err := scanner.Scan(
		&entry.ID, &entry.UserID, &entry.Mood, &entry.Note,
		&entry.RecordedAt, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &entry, nil
}

func scanEntryRows(rows pgx.Rows) ([]*models.Entry, error) {
	defer rows.Close()

	entries := make([]*models.Entry, 0)

	for rows.Next() {
		entry, err := scanEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

func (r *EntryRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	entry.ID = uuid.New().String()

	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = now
	}

	query := `
		INSERT INTO entries (id, user_id, mood, note, recorded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + entryColumns

	return scanEntryRow(r.db.Pool.QueryRow(ctx, query,
		entry.ID, entry.UserID, entry.Mood, entry.Note,
		entry.RecordedAt, entry.CreatedAt, entry.UpdatedAt,
	))
}

func (r *EntryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries WHERE user_id = $1
		ORDER BY recorded_at DESC, created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}

	return scanEntryRows(rows)
}

func (r *EntryRepository) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 AND user_id = $2`
	return scanEntryRow(r.db.Pool.QueryRow(ctx, query, id, userID))
}

func (r *EntryRepository) Update(ctx context.Context, userID string, entry *models.Entry) (*models.Entry, error) {
	entry.UpdatedAt = time.Now()

	query := `
		UPDATE entries
		SET mood = $1, note = $2, recorded_at = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
		RETURNING ` + entryColumns

	return scanEntryRow(r.db.Pool.QueryRow(ctx, query,
		entry.Mood, entry.Note, entry.RecordedAt, entry.UpdatedAt,
		entry.ID, userID,
	))
}

func (r *EntryRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM entries WHERE id = $1 AND user_id = $2`

	result, err := r.db.Pool.Exec(ctx, query, id, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
