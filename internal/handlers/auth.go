package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avdeenko/bookshelf/internal/logging"
	authmw "github.com/avdeenko/bookshelf/internal/middleware/auth"
	"github.com/avdeenko/bookshelf/internal/models"
	"github.com/avdeenko/bookshelf/internal/repo"
	"github.com/avdeenko/bookshelf/internal/token"
)

type AuthHandler struct {
	Repo   *repo.GormRepo
	Tokens *token.Service
}

type credentials struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req credentials
	if herr := decodeBody(c, &req); herr != nil {
		return herr
	}
	if fe := validateCredentials(req.Username, req.Password); len(fe) > 0 {
		return c.JSON(http.StatusBadRequest, fe)
	}

	user, err := h.Repo.Register(ctx, *req.Username, *req.Password, false)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			l.Warn("register_conflict", "username", *req.Username)
			return conflict(c, "An user with the same username already exists")
		}
		l.Error("register_failed", "error", err)
		return storageError(c, err)
	}

	accessToken, err := h.Tokens.Issue(ctx, user.Username, token.TypeAccess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	refreshToken, err := h.Tokens.Issue(ctx, user.Username, token.TypeRefresh)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("user_registered", "username", user.Username)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":       fmt.Sprintf("User %s was created", user.Username),
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req credentials
	if herr := decodeBody(c, &req); herr != nil {
		return herr
	}
	if fe := validateCredentials(req.Username, req.Password); len(fe) > 0 {
		return c.JSON(http.StatusBadRequest, fe)
	}

	user, err := h.Repo.Authenticate(ctx, *req.Username, *req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{
				"message": fmt.Sprintf("User %s does not exist", *req.Username),
			})
		case errors.Is(err, repo.ErrWrongCredentials):
			l.Warn("login_failed", "username", *req.Username)
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Wrong credentials"})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	accessToken, err := h.Tokens.Issue(ctx, user.Username, token.TypeAccess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	refreshToken, err := h.Tokens.Issue(ctx, user.Username, token.TypeRefresh)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	l.Info("login_successful", "username", user.Username)
	return c.JSON(http.StatusOK, echo.Map{
		"message":       fmt.Sprintf("Logged in as %s", user.Username),
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) LogoutAccess(c echo.Context) error {
	ctx := c.Request().Context()
	claims := authmw.ClaimsFromContext(c)

	if err := h.Tokens.Revoke(ctx, claims); err != nil {
		return storageError(c, err)
	}

	logging.FromContext(ctx).Info("access_token_revoked", "username", claims.Username)
	return c.JSON(http.StatusOK, echo.Map{"message": "Access token has been revoked"})
}

func (h *AuthHandler) LogoutRefresh(c echo.Context) error {
	ctx := c.Request().Context()
	claims := authmw.ClaimsFromContext(c)

	if err := h.Tokens.Revoke(ctx, claims); err != nil {
		return storageError(c, err)
	}

	logging.FromContext(ctx).Info("refresh_token_revoked", "username", claims.Username)
	return c.JSON(http.StatusOK, echo.Map{"message": "Refresh token has been revoked"})
}

// RefreshToken mints a fresh access token off a valid refresh token. The
// refresh token itself is not rotated.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	claims := authmw.ClaimsFromContext(c)

	accessToken, err := h.Tokens.Issue(ctx, claims.Identity, token.TypeAccess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"username":     claims.Identity,
		"access_token": accessToken,
	})
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.Repo.ListUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for i := range users {
		decorateUser(c, &users[i])
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}
	user, err := h.Repo.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(c)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	decorateUser(c, user)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}
	if err := h.Repo.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(c)
		}
		return storageError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
