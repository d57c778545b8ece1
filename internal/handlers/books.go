package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avdeenko/bookshelf/internal/logging"
	"github.com/avdeenko/bookshelf/internal/models"
	"github.com/avdeenko/bookshelf/internal/repo"
)

type BookHandler struct {
	Repo *repo.GormRepo
}

type bookInput struct {
	Title   *string         `json:"title"`
	ISBN    *int64          `json:"isbn"`
	Year    *int            `json:"year"`
	Authors json.RawMessage `json:"authors"`
}

func (h *BookHandler) List(c echo.Context) error {
	books, err := h.Repo.ListBooks(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for i := range books {
		decorateBook(c, &books[i])
	}
	if books == nil {
		books = []models.Book{}
	}
	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) Get(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}
	book, err := h.Repo.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(c)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	decorateBook(c, book)
	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "book_create")

	var req bookInput
	if herr := decodeBody(c, &req); herr != nil {
		return herr
	}

	fe := fieldErrors{}
	if req.Title == nil {
		fe.add("title", msgMissingField)
	}
	if req.ISBN == nil {
		fe.add("isbn", msgMissingField)
	}

	names, _, authorErrs, err := parseAuthors(req.Authors)
	if err != nil {
		return conflict(c, err.Error())
	}
	for field, msgs := range authorErrs {
		fe[field] = msgs
	}
	if len(fe) > 0 {
		return c.JSON(http.StatusBadRequest, fe)
	}

	// reject a duplicate isbn before resolving authors, so a rejected
	// create does not leave freshly created Author rows behind
	taken, err := h.Repo.ISBNTaken(ctx, *req.ISBN)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if taken {
		return conflict(c, "A book with the same ISBN already exists")
	}

	authors, err := h.Repo.ResolveAuthors(ctx, names)
	if err != nil {
		l.Error("author_resolve_failed", "error", err)
		return storageError(c, err)
	}

	book := models.Book{
		Title:   *req.Title,
		ISBN:    *req.ISBN,
		Authors: authors,
	}
	if req.Year != nil {
		book.Year = *req.Year
	}

	if err := h.Repo.CreateBook(ctx, &book); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return conflict(c, "A book with the same ISBN already exists")
		}
		l.Error("book_create_failed", "error", err)
		return storageError(c, err)
	}

	created, err := h.Repo.GetBook(ctx, book.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	decorateBook(c, created)
	return c.JSON(http.StatusCreated, created)
}

// Patch modifies only the fields present in the payload. An authors array,
// when present, replaces the book's author set wholesale; entries are
// resolved by name and created when absent.
func (h *BookHandler) Patch(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}
	book, err := h.Repo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(c)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req bookInput
	if herr := decodeBody(c, &req); herr != nil {
		return herr
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Year != nil {
		book.Year = *req.Year
	}
	if req.ISBN != nil {
		taken, err := h.Repo.ISBNTaken(ctx, *req.ISBN)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if taken {
			return conflict(c, "A book with the same ISBN already exists")
		}
		book.ISBN = *req.ISBN
	}

	replaceAuthors := false
	names, present, authorErrs, err := parseAuthors(req.Authors)
	if err != nil {
		return conflict(c, err.Error())
	}
	if len(authorErrs) > 0 {
		return c.JSON(http.StatusBadRequest, authorErrs)
	}
	if present {
		authors, err := h.Repo.ResolveAuthors(ctx, names)
		if err != nil {
			return storageError(c, err)
		}
		book.Authors = authors
		replaceAuthors = true
	}

	if err := h.Repo.SaveBook(ctx, book, replaceAuthors); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return conflict(c, "A book with the same ISBN already exists")
		}
		return storageError(c, err)
	}

	updated, err := h.Repo.GetBook(ctx, book.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	decorateBook(c, updated)
	return c.JSON(http.StatusOK, updated)
}

func (h *BookHandler) Delete(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return notFound(c)
	}
	if err := h.Repo.DeleteBook(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(c)
		}
		return storageError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
