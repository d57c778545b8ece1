package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"password"`
	RegisteredOn time.Time `gorm:"not null"                 json:"registered_on"`
	Admin        bool      `gorm:"not null;default:false"   json:"admin"`
	URL          string    `gorm:"-"                        json:"url"`
}

// BlacklistToken stores the jti of a revoked token. ExpiresAt mirrors the
// token's own expiry so rows can be pruned once the token would be
// rejected as expired anyway.
type BlacklistToken struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JTI           string    `gorm:"uniqueIndex;not null"     json:"jti"`
	BlacklistedOn time.Time `gorm:"not null"                 json:"blacklisted_on"`
	ExpiresAt     time.Time `gorm:"index;not null"           json:"expires_at"`
}

type Author struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"             json:"id"`
	Firstname string `gorm:"not null;uniqueIndex:idx_author_name" json:"firstname"`
	Lastname  string `gorm:"not null;uniqueIndex:idx_author_name" json:"lastname"`
	Books     []Book `gorm:"many2many:book_author"                json:"-"`
	URL       string `gorm:"-"                                    json:"url"`
}

type Book struct {
	ID      uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title   string   `gorm:"not null"                 json:"title"`
	ISBN    int64    `gorm:"unique;not null"          json:"isbn"`
	Year    int      `json:"year"`
	Authors []Author `gorm:"many2many:book_author"    json:"authors"`
	URL     string   `gorm:"-"                        json:"url"`
}
