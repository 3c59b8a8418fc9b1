package services

import (
	"context"
	"time"

	"github.com/moodlog/api/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc              func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc           func(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrPhoneFunc func(ctx context.Context, email, phoneNumber, countryCode string) (bool, error)
	CreateFunc               func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc               func(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetResetTokenFunc        func(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHashFunc  func(ctx context.Context, tokenHash string) (*models.User, error)
	UpdatePasswordFunc       func(ctx context.Context, id, passwordHash string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phoneNumber, countryCode string) (bool, error) {
	if m.ExistsByEmailOrPhoneFunc != nil {
		return m.ExistsByEmailOrPhoneFunc(ctx, email, phoneNumber, countryCode)
	}
	return false, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, id, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockUserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	if m.GetByResetTokenHashFunc != nil {
		return m.GetByResetTokenHashFunc(ctx, tokenHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// MockEntryRepository implements EntryRepository for testing
type MockEntryRepository struct {
	CreateFunc     func(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	ListByUserFunc func(ctx context.Context, userID string) ([]*models.Entry, error)
	GetByIDFunc    func(ctx context.Context, userID, id string) (*models.Entry, error)
	UpdateFunc     func(ctx context.Context, userID string, entry *models.Entry) (*models.Entry, error)
	DeleteFunc     func(ctx context.Context, userID, id string) error
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return nil, models.ErrInternalServer
}

func (m *MockEntryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Entry, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Entry{}, nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, userID, id string) (*models.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockEntryRepository) Update(ctx context.Context, userID string, entry *models.Entry) (*models.Entry, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, entry)
	}
	return nil, models.ErrInternalServer
}

func (m *MockEntryRepository) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return nil
}
