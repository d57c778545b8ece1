package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avdeenko/bookshelf/internal/models"
)

// Revoke blacklists a jti until the token's own expiry. Revoking an already
// revoked token is a no-op: a repeated logout should not error. Rows whose
// expiry has passed are pruned on the same write path, which keeps the
// blacklist bounded without changing observable behavior (an expired token
// is rejected before the blacklist is ever consulted).
func (r *GormRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	db := r.DB.WithContext(ctx)

	if err := db.Where("expires_at < ?", time.Now()).
		Delete(&models.BlacklistToken{}).Error; err != nil {
		return err
	}

	entry := models.BlacklistToken{
		JTI:           jti,
		BlacklistedOn: time.Now(),
		ExpiresAt:     expiresAt,
	}
	if err := db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

func (r *GormRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.BlacklistToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
