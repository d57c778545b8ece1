package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avdeenko/bookshelf/internal/hash"
	"github.com/avdeenko/bookshelf/internal/models"
)

// Register checks the username first so the caller can show a friendly
// conflict message; the unique constraint remains the source of truth and a
// duplicate slipping past the pre-check surfaces as the same ErrConflict.
func (r *GormRepo) Register(ctx context.Context, username, password string, admin bool) (*models.User, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrConflict
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		RegisteredOn: time.Now(),
		Admin:        admin,
	}
	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrWrongCredentials
	}
	return &user, nil
}

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// IsAdmin reports the current admin flag for a username. An unknown user is
// simply not an admin; the claim is derived at token issuance time only.
func (r *GormRepo) IsAdmin(ctx context.Context, username string) bool {
	user, err := r.FindByUsername(ctx, username)
	if err != nil {
		return false
	}
	return user.Admin
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account if the username is free.
func (r *GormRepo) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := r.Register(ctx, username, password, true)
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}
