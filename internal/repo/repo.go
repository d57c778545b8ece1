package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avdeenko/bookshelf/internal/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrWrongCredentials = errors.New("wrong credentials")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate() error {
	return r.DB.AutoMigrate(
		&models.User{},
		&models.BlacklistToken{},
		&models.Author{},
		&models.Book{},
	)
}
