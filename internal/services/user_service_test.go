package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/api/internal/models"
	pkgauth "github.com/moodlog/api/pkg/auth"
)

func strPtr(s string) *string { return &s }

func TestGetUserByID_NotFound(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, testLogger())

	_, err := svc.GetUserByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetUserByID_MalformedIDIsBadRequest(t *testing.T) {
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			// What the repository yields when Postgres rejects the uuid cast.
			return nil, models.ErrBadRequest
		},
	}
	svc := NewUserService(users, testLogger())

	_, err := svc.GetUserByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.NotErrorIs(t, err, models.ErrInternalServer)
}

func TestUpdateUser_AppliesOnlySetFields(t *testing.T) {
	existing := registeredUser("correct-horse")
	var persisted *models.User
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return existing, nil
		},
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			persisted = user
			return user, nil
		},
	}
	svc := NewUserService(users, testLogger())

	updated, err := svc.UpdateUser(context.Background(), existing.ID, UserUpdate{
		Email:       strPtr("  NEW@Example.COM "),
		DisplayName: strPtr("JD"),
	})

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	require.NotNil(t, persisted.DisplayName)
	assert.Equal(t, "JD", *persisted.DisplayName)
	// Untouched fields survive.
	assert.Equal(t, "Jane Doe", persisted.Name)
	assert.Equal(t, "5551234567", persisted.PhoneNumber)
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	existing := registeredUser("correct-horse")
	var persisted *models.User
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return existing, nil
		},
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			persisted = user
			return user, nil
		},
	}
	svc := NewUserService(users, testLogger())

	_, err := svc.UpdateUser(context.Background(), existing.ID, UserUpdate{
		Password: strPtr("battery-staple"),
	})

	require.NoError(t, err)
	assert.NotEqual(t, "battery-staple", persisted.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(persisted.PasswordHash, "battery-staple"))
}

func TestUpdateUser_ConflictOnDuplicateEmail(t *testing.T) {
	existing := registeredUser("correct-horse")
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return existing, nil
		},
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}
	svc := NewUserService(users, testLogger())

	_, err := svc.UpdateUser(context.Background(), existing.ID, UserUpdate{
		Email: strPtr("taken@example.com"),
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, testLogger())

	_, err := svc.UpdateUser(context.Background(), "ghost", UserUpdate{Name: strPtr("X")})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
