package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avdeenko/bookshelf/internal/token"
)

const claimsContextKey = "claims"

// Guard wraps handlers with token checks. A failed check short-circuits the
// chain; the handler body never runs.
type Guard struct {
	Tokens *token.Service
}

func (g *Guard) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, token.TypeAccess)
}

func (g *Guard) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, token.TypeRefresh)
}

// AdminOnly implies RequireAccess and additionally rejects tokens whose
// claims lack admin rights.
func (g *Guard) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(func(c echo.Context) error {
		claims := ClaimsFromContext(c)
		if claims == nil || !claims.Admin {
			username := ""
			if claims != nil {
				username = claims.Username
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("%s does not have access", username))
		}
		return next(c)
	}, token.TypeAccess)
}

func (g *Guard) require(next echo.HandlerFunc, typ token.Type) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := g.Tokens.Verify(c.Request().Context(), raw, typ)
		if err != nil {
			return verifyError(err, typ)
		}

		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

func ClaimsFromContext(c echo.Context) *token.Claims {
	if claims, ok := c.Get(claimsContextKey).(*token.Claims); ok {
		return claims
	}
	return nil
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization Header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Bad Authorization header. Expected value 'Bearer <JWT>'")
	}
	return parts[1], nil
}

func verifyError(err error, typ token.Type) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
	case errors.Is(err, token.ErrRevoked):
		return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
	case errors.Is(err, token.ErrWrongType):
		if typ == token.TypeRefresh {
			return echo.NewHTTPError(http.StatusUnauthorized, "Only refresh tokens are allowed")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "Only access tokens are allowed")
	case errors.Is(err, token.ErrInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
