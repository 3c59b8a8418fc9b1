package database

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/moodlog/api/internal/models"
)

// MapPostgresError folds driver-level failures into the sentinel error
// taxonomy. Unique violations become ErrConflict so a duplicate-key race on
// insert surfaces exactly like the pre-insert uniqueness check.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return models.ErrConflict
		case "23503": // foreign_key_violation
			return models.ErrBadRequest
		case "23502": // not_null_violation
			return models.ErrBadRequest
		case "22P02": // invalid_text_representation, e.g. a non-uuid id param
			return models.ErrBadRequest
		}
	}

	return err
}
