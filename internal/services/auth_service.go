package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/moodlog/api/internal/models"
	"github.com/moodlog/api/internal/session"
	pkgauth "github.com/moodlog/api/pkg/auth"
	pkglogger "github.com/moodlog/api/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phoneNumber, countryCode string) (bool, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthService handles registration, login/logout and the password flows.
type AuthService struct {
	users         UserRepository
	sessions      session.Store
	logger        *slog.Logger
	sessionTTL    time.Duration
	resetTokenTTL time.Duration
}

func NewAuthService(users UserRepository, sessions session.Store, logger *slog.Logger, sessionTTL, resetTokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		logger:        logger,
		sessionTTL:    sessionTTL,
		resetTokenTTL: resetTokenTTL,
	}
}

// RegisterInput carries already format-validated registration fields.
type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	PhoneNumber string
	CountryCode string
}

// Register creates a user with a bcrypt password hash. Returns ErrConflict
// when the email or (phone, country) pair is taken, whether that is caught
// by the pre-insert check or by the unique index.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.users.ExistsByEmailOrPhone(ctx, email, input.PhoneNumber, input.CountryCode)
	if err != nil {
		s.logger.Error("failed to check for existing user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if exists {
		s.logger.Info("registration rejected: duplicate email or phone")
		return nil, models.ErrConflict
	}

	passwordHash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(input.Name),
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		CountryCode:  strings.TrimSpace(input.CountryCode),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost the race to a concurrent insert; same outcome as the check.
			s.logger.Info("registration rejected: duplicate key on insert")
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and regenerates the session. The old session
// token (if any) is invalidated and the new one is durably stored before
// Login returns; a failure at either step fails the whole login. Lookup
// misses and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password, oldSessionToken string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			return nil, "", models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, "", models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		return nil, "", models.ErrUnauthorized
	}

	// Regenerate: the pre-login session id must never stay valid past the
	// privilege boundary.
	if oldSessionToken != "" {
		if err := s.sessions.Delete(ctx, oldSessionToken); err != nil {
			s.logger.Error("failed to invalidate pre-login session", slog.Any("error", err))
			return nil, "", models.ErrInternalServer
		}
	}

	token, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		s.logger.Error("failed to create session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, "", models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// Logout destroys the session server-side. A store failure is surfaced, not
// swallowed: it would leave a stale authenticated session behind.
func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	if err := s.sessions.Delete(ctx, sessionToken); err != nil {
		s.logger.Error("failed to destroy session", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// RequestPasswordReset issues a reset token for the account, if one exists.
// Only the SHA-256 hash is persisted; the raw token is returned to the
// caller for delivery. An unknown email returns ("", nil) so the handler
// can answer identically either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			return "", nil
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	token, err := pkgauth.GenerateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, pkgauth.HashResetToken(token), expiresAt); err != nil {
		s.logger.Error("failed to store reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("password reset token issued",
		slog.String("user_id", user.ID),
		slog.Time("expires_at", expiresAt))
	return token, nil
}

// ConfirmPasswordReset consumes a reset token. Wrong, already-used and
// expired tokens all return ErrBadRequest; callers present one generic
// failure. On success the new hash is stored, the token state cleared and
// the caller's current session (if any) destroyed to force
// re-authentication.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword, currentSessionToken string) error {
	user, err := s.users.GetByResetTokenHash(ctx, pkgauth.HashResetToken(token))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset confirm failed: invalid or expired token")
			return models.ErrBadRequest
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	passwordHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	// Clears the token state in the same statement: single-use is enforced
	// by the clear.
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if currentSessionToken != "" {
		if err := s.sessions.Delete(ctx, currentSessionToken); err != nil {
			// Password is already rotated; the stale session dies at TTL.
			s.logger.Warn("failed to destroy session after password reset",
				slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}

	s.logger.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// ChangePassword rotates the password for an authenticated user after
// re-verifying the current one. A mismatch is ErrUnauthorized; the caller
// already proved who they are, so the message may be specific. Any pending
// reset token is cleared alongside the hash update.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrUnauthorized
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		s.logger.Info("password change rejected: current password mismatch", slog.String("user_id", userID))
		return models.ErrUnauthorized
	}

	passwordHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.String("user_id", userID))
	return nil
}
