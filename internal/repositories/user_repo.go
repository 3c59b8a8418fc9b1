package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/moodlog/api/internal/database"
	"github.com/moodlog/api/internal/models"
)

const userColumns = `id, email, password_hash, name, display_name, phone_number, country_code, role,
		password_reset_token_hash, password_reset_expires, created_at, updated_at`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner covers pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.DisplayName, &user.PhoneNumber, &user.CountryCode, &user.Role,
		&user.PasswordResetTokenHash, &user.PasswordResetExpires,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, email))
}

// ExistsByEmailOrPhone backs the registration conflict check: one user with
// the same normalized email or the same (phone, country) pair.
func (r *UserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phoneNumber, countryCode string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE email = $1 OR (phone_number = $2 AND country_code = $3)
		)
	`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, email, phoneNumber, countryCode).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

// Create inserts the user. Unique-index violations surface as ErrConflict,
// closing the race between the pre-insert existence check and the insert.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := `
		INSERT INTO users (id, email, password_hash, name, display_name, phone_number, country_code, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name,
		user.DisplayName, user.PhoneNumber, user.CountryCode, user.Role,
		user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, display_name = $4,
			phone_number = $5, country_code = $6, role = $7, updated_at = $8
		WHERE id = $9
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.DisplayName,
		user.PhoneNumber, user.CountryCode, user.Role, user.UpdatedAt, id,
	))
}

// SetResetToken records the hash and expiry of a freshly issued reset token,
// replacing any previous one.
func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET password_reset_token_hash = $1, password_reset_expires = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.Pool.Exec(ctx, query, tokenHash, expiresAt, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetByResetTokenHash resolves an unexpired reset token hash to its user.
// Expired or unknown hashes are both ErrNotFound; callers must not
// distinguish the two.
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE password_reset_token_hash = $1 AND password_reset_expires > now()
	`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, tokenHash))
}

// UpdatePassword replaces the password hash and clears any pending reset
// token in the same statement, so a completed change always invalidates an
// outstanding reset.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, password_reset_token_hash = NULL,
			password_reset_expires = NULL, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Pool.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ClearExpiredResetTokens removes reset-token state whose expiry has passed.
// Run by the background cleanup.
func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	query := `
		UPDATE users
		SET password_reset_token_hash = NULL, password_reset_expires = NULL
		WHERE password_reset_expires IS NOT NULL AND password_reset_expires <= now()
	`

	result, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
