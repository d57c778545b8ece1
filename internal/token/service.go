package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avdeenko/bookshelf/internal/repo"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	ErrExpired   = errors.New("token has expired")
	ErrRevoked   = errors.New("token has been revoked")
	ErrWrongType = errors.New("wrong token type")
	ErrInvalid   = errors.New("invalid token")
)

// Claims carries the identity and admin flag embedded at issuance time.
// The admin flag is a snapshot: promoting or demoting a user only takes
// effect on the next token issued for them.
type Claims struct {
	Identity string `json:"identity"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
	Type     Type   `json:"type"`
	jwt.RegisteredClaims
}

// Service mints and verifies HS256-signed tokens. Tokens are stateless
// until revoked; revocation is a blacklist keyed by jti, consulted on every
// verification after signature and expiry checks.
type Service struct {
	Repo       *repo.GormRepo
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *Service) Issue(ctx context.Context, username string, typ Type) (string, error) {
	ttl := s.AccessTTL
	if typ == TypeRefresh {
		ttl = s.RefreshTTL
	}

	now := time.Now()
	claims := Claims{
		Identity: username,
		Username: username,
		Admin:    s.Repo.IsAdmin(ctx, username),
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

func (s *Service) Verify(ctx context.Context, raw string, expected Type) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalid
		}
		return s.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}

	if claims.Type != expected {
		return nil, ErrWrongType
	}

	revoked, err := s.Repo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}

	return &claims, nil
}

func (s *Service) Revoke(ctx context.Context, claims *Claims) error {
	return s.Repo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
