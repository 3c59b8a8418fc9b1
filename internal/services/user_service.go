package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/moodlog/api/internal/models"
	pkgauth "github.com/moodlog/api/pkg/auth"
)

// UserService handles user profile reads and admin updates.
type UserService struct {
	users  UserRepository
	logger *slog.Logger
}

func NewUserService(users UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// UserUpdate carries a partial update; nil fields are left untouched.
// Format validation happens at the handler; the service applies and persists.
type UserUpdate struct {
	Email       *string
	Name        *string
	DisplayName *string
	PhoneNumber *string
	CountryCode *string
	Role        *string
	Password    *string
}

// Empty reports whether no field is set.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Name == nil && u.DisplayName == nil &&
		u.PhoneNumber == nil && u.CountryCode == nil && u.Role == nil &&
		u.Password == nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return nil, models.ErrNotFound
		}
		if errors.Is(err, models.ErrBadRequest) {
			s.logger.Info("rejected malformed user id", slog.String("user_id", id))
			return nil, models.ErrBadRequest
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

// UpdateUser applies a partial update. Uniqueness violations on the new
// email or (phone, country) pair come back as ErrConflict.
func (s *UserService) UpdateUser(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrBadRequest) {
			return nil, err
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if update.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*update.Email))
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.DisplayName != nil {
		displayName := strings.TrimSpace(*update.DisplayName)
		user.DisplayName = &displayName
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*update.PhoneNumber)
	}
	if update.CountryCode != nil {
		user.CountryCode = strings.TrimSpace(*update.CountryCode)
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.Password != nil {
		passwordHash, err := pkgauth.HashPassword(*update.Password)
		if err != nil {
			s.logger.Error("failed to hash password", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		user.PasswordHash = passwordHash
	}

	updated, err := s.users.Update(ctx, id, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("user update rejected: duplicate email or phone", slog.String("user_id", id))
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user updated", slog.String("user_id", id))
	return updated, nil
}
