package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avdeenko/bookshelf/internal/logging"
	"github.com/avdeenko/bookshelf/internal/models"
	"github.com/avdeenko/bookshelf/internal/repo"
)

type AuthorHandler struct {
	Repo *repo.GormRepo
}

func (h *AuthorHandler) List(c echo.Context) error {
	authors, err := h.Repo.ListAuthors(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for i := range authors {
		decorateAuthor(c, &authors[i])
	}
	if authors == nil {
		authors = []models.Author{}
	}
	return c.JSON(http.StatusOK, authors)
}

func (h *AuthorHandler) Get(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}
	author, err := h.Repo.GetAuthor(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(c)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	decorateAuthor(c, author)
	return c.JSON(http.StatusOK, author)
}

func (h *AuthorHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "author_create")

	var req authorInput
	if herr := decodeBody(c, &req); herr != nil {
		return herr
	}
	if fe := req.validate(); len(fe) > 0 {
		return c.JSON(http.StatusBadRequest, fe)
	}

	author, err := h.Repo.CreateAuthor(ctx, repo.AuthorName{
		Firstname: *req.Firstname,
		Lastname:  *req.Lastname,
	})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return conflict(c, "An author with the same name already exists")
		}
		l.Error("author_create_failed", "error", err)
		return storageError(c, err)
	}

	decorateAuthor(c, author)
	return c.JSON(http.StatusCreated, author)
}

// Patch keeps prior values for absent fields. Provided-but-empty values
// also keep the prior value, though they still participate in the
// uniqueness check on the resulting name pair.
func (h *AuthorHandler) Patch(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}
	author, err := h.Repo.GetAuthor(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(c)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req authorInput
	if herr := decodeBody(c, &req); herr != nil {
		return herr
	}

	candidate := repo.AuthorName{Firstname: author.Firstname, Lastname: author.Lastname}
	if req.Firstname != nil {
		candidate.Firstname = *req.Firstname
	}
	if req.Lastname != nil {
		candidate.Lastname = *req.Lastname
	}

	taken, err := h.Repo.AuthorNameTaken(ctx, candidate)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if taken {
		return conflict(c, "An author with the same name already exists")
	}

	if req.Firstname != nil && *req.Firstname != "" {
		author.Firstname = *req.Firstname
	}
	if req.Lastname != nil && *req.Lastname != "" {
		author.Lastname = *req.Lastname
	}

	if err := h.Repo.SaveAuthor(ctx, author); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return conflict(c, "An author with the same name already exists")
		}
		return storageError(c, err)
	}

	decorateAuthor(c, author)
	return c.JSON(http.StatusOK, author)
}

func (h *AuthorHandler) Delete(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}
	if err := h.Repo.DeleteAuthor(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(c)
		}
		return storageError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
