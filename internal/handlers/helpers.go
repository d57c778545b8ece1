package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avdeenko/bookshelf/internal/models"
	"github.com/avdeenko/bookshelf/internal/repo"
)

const msgMissingField = "Missing data for required field."

// fieldErrors is the per-field validation shape: {"field": ["message", ...]}.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func shorterThanMin(min int) string {
	return fmt.Sprintf("Shorter than minimum length %d.", min)
}

// decodeBody rejects empty, null and {} bodies the same way: the caller
// provided nothing to work with.
func decodeBody(c echo.Context, v any) *echo.HTTPError {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No input data provided")
	}
	var probe map[string]json.RawMessage
	if json.Unmarshal(body, &probe) != nil || len(probe) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No input data provided")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input data")
	}
	return nil
}

func validateCredentials(username, password *string) fieldErrors {
	fe := fieldErrors{}
	if username == nil {
		fe.add("username", msgMissingField)
	} else if len(*username) < 3 {
		fe.add("username", shorterThanMin(3))
	}
	if password == nil {
		fe.add("password", msgMissingField)
	} else if len(*password) < 3 {
		fe.add("password", shorterThanMin(3))
	}
	return fe
}

type authorInput struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
}

func (in authorInput) validate() fieldErrors {
	fe := fieldErrors{}
	if in.Firstname == nil {
		fe.add("firstname", msgMissingField)
	}
	if in.Lastname == nil {
		fe.add("lastname", msgMissingField)
	}
	return fe
}

var errAuthorsNotArray = errors.New("'authors' field must be an array")

// parseAuthors validates an incoming authors payload and reduces it to
// name pairs. An empty raw value means the field was absent; anything
// present that is not a JSON array is rejected.
func parseAuthors(raw json.RawMessage) (names []repo.AuthorName, present bool, fe fieldErrors, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, nil, nil
	}
	if trimmed[0] != '[' {
		return nil, true, nil, errAuthorsNotArray
	}

	var inputs []authorInput
	if err := json.Unmarshal(trimmed, &inputs); err != nil {
		return nil, true, nil, errAuthorsNotArray
	}

	names = make([]repo.AuthorName, 0, len(inputs))
	for _, in := range inputs {
		if fe := in.validate(); len(fe) > 0 {
			return nil, true, fe, nil
		}
		names = append(names, repo.AuthorName{
			Firstname: *in.Firstname,
			Lastname:  *in.Lastname,
		})
	}
	return names, true, nil, nil
}

func idParam(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"message": "Not Found"})
}

func conflict(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func storageError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}

func decorateUser(c echo.Context, u *models.User) {
	u.URL = fmt.Sprintf("%s/auth/users/%d", baseURL(c), u.ID)
}

func decorateAuthor(c echo.Context, a *models.Author) {
	a.URL = fmt.Sprintf("%s/api/v1/authors/%d", baseURL(c), a.ID)
}

func decorateBook(c echo.Context, b *models.Book) {
	b.URL = fmt.Sprintf("%s/api/v1/books/%d", baseURL(c), b.ID)
	for i := range b.Authors {
		decorateAuthor(c, &b.Authors[i])
	}
	if b.Authors == nil {
		b.Authors = []models.Author{}
	}
}
