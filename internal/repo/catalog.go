package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avdeenko/bookshelf/internal/models"
)

type AuthorName struct {
	Firstname string
	Lastname  string
}

func (r *GormRepo) ListAuthors(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *GormRepo) GetAuthor(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	if err := r.DB.WithContext(ctx).First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &author, nil
}

func (r *GormRepo) AuthorNameTaken(ctx context.Context, name AuthorName) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Author{}).
		Where("firstname = ? AND lastname = ?", name.Firstname, name.Lastname).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateAuthor(ctx context.Context, name AuthorName) (*models.Author, error) {
	taken, err := r.AuthorNameTaken(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrConflict
	}

	author := models.Author{Firstname: name.Firstname, Lastname: name.Lastname}
	if err := r.DB.WithContext(ctx).Create(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &author, nil
}

func (r *GormRepo) SaveAuthor(ctx context.Context, author *models.Author) error {
	if err := r.DB.WithContext(ctx).Save(author).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *GormRepo) DeleteAuthor(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author models.Author
		if err := tx.First(&author, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&author).Association("Books").Clear(); err != nil {
			return err
		}
		return tx.Delete(&author).Error
	})
}

// ResolveAuthors maps (firstname, lastname) pairs to Author rows, creating
// any that do not exist yet. Author identity is name-based on write paths.
func (r *GormRepo) ResolveAuthors(ctx context.Context, names []AuthorName) ([]models.Author, error) {
	authors := make([]models.Author, 0, len(names))
	for _, name := range names {
		var author models.Author
		err := r.DB.WithContext(ctx).
			Where("firstname = ? AND lastname = ?", name.Firstname, name.Lastname).
			First(&author).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			author = models.Author{Firstname: name.Firstname, Lastname: name.Lastname}
			err = r.DB.WithContext(ctx).Create(&author).Error
		}
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, nil
}

func (r *GormRepo) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := r.DB.WithContext(ctx).Preload("Authors").Order("id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *GormRepo) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.DB.WithContext(ctx).Preload("Authors").First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *GormRepo) ISBNTaken(ctx context.Context, isbn int64) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Book{}).
		Where("isbn = ?", isbn).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateBook(ctx context.Context, book *models.Book) error {
	taken, err := r.ISBNTaken(ctx, book.ISBN)
	if err != nil {
		return err
	}
	if taken {
		return ErrConflict
	}

	if err := r.DB.WithContext(ctx).Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// SaveBook persists field changes; when replaceAuthors is set the book's
// author set is swapped wholesale for book.Authors.
func (r *GormRepo) SaveBook(ctx context.Context, book *models.Book, replaceAuthors bool) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replaceAuthors {
			if err := tx.Model(book).Association("Authors").Replace(book.Authors); err != nil {
				return err
			}
		}
		return tx.Omit("Authors").Save(book).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *GormRepo) DeleteBook(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&book).Association("Authors").Clear(); err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
}
