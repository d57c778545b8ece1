package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAuthor(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.register("kenneth", "secret")

	rec := env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeMap(t, rec)
	assert.Equal(t, "Kenneth", resp["firstname"])
	assert.Equal(t, "Reitz", resp["lastname"])
	assert.NotEmpty(t, resp["url"])
}

func TestCreateAuthor_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.register("kenneth", "secret")

	rec := env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "An author with the same name already exists", decodeMap(t, rec)["error"])
}

func TestCreateAuthor_Validation(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.register("kenneth", "secret")

	rec := env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth"}, access)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"Missing data for required field."}, decodeMap(t, rec)["lastname"])
}

func TestGetAuthors_Public(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.register("kenneth", "secret")

	rec := env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/authors/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	authors := decodeList(t, rec)
	require.Len(t, authors, 1)
	assert.Equal(t, "Kenneth", authors[0]["firstname"])

	rec = env.do(http.MethodGet, "/api/v1/authors/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/authors/42", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchAuthor(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.register("kenneth", "secret")

	rec := env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth", "lastname": "Rietz"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPatch, "/api/v1/authors/1",
		map[string]string{"lastname": "Reitz"}, access)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeMap(t, rec)
	assert.Equal(t, "Kenneth", resp["firstname"])
	assert.Equal(t, "Reitz", resp["lastname"])
}

func TestPatchAuthor_NameConflict(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.register("kenneth", "secret")

	rec := env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Dan", "lastname": "Bader"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPatch, "/api/v1/authors/2",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "An author with the same name already exists", decodeMap(t, rec)["error"])
}

func TestPatchAuthor_OwnNameConflicts(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.register("kenneth", "secret")

	rec := env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	// the uniqueness check spans all rows, the author's own included
	rec = env.do(http.MethodPatch, "/api/v1/authors/1",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "An author with the same name already exists", decodeMap(t, rec)["error"])
}

func TestDeleteAuthor(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.register("kenneth", "secret")

	rec := env.do(http.MethodPost, "/api/v1/authors/",
		map[string]string{"firstname": "Kenneth", "lastname": "Reitz"}, access)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/authors/1", nil, access)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodDelete, "/api/v1/authors/1", nil, access)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
