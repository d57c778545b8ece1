package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdeenko/bookshelf/internal/handlers"
	authmw "github.com/avdeenko/bookshelf/internal/middleware/auth"
	"github.com/avdeenko/bookshelf/internal/repo"
	"github.com/avdeenko/bookshelf/internal/token"
	httpserver "github.com/avdeenko/bookshelf/internal/transport/http"
)

type testEnv struct {
	t      *testing.T
	e      *echo.Echo
	rp     *repo.GormRepo
	tokens *token.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	rp := &repo.GormRepo{DB: db}
	require.NoError(t, rp.Migrate())

	tokens := &token.Service{
		Repo:       rp,
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	httpserver.Register(e, &httpserver.Deps{
		Auth:    &handlers.AuthHandler{Repo: rp, Tokens: tokens},
		Authors: &handlers.AuthorHandler{Repo: rp},
		Books:   &handlers.BookHandler{Repo: rp},
		Guard:   &authmw.Guard{Tokens: tokens},
	})

	return &testEnv{t: t, e: e, rp: rp, tokens: tokens}
}

func (env *testEnv) do(method, path string, body any, bearer string) *httptest.ResponseRecorder {
	env.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doRaw(method, path, body, bearer string) *httptest.ResponseRecorder {
	env.t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// register creates a user over the API and returns its token pair.
func (env *testEnv) register(username, password string) (access, refresh string) {
	env.t.Helper()

	rec := env.do(http.MethodPost, "/auth/registration",
		map[string]string{"username": username, "password": password}, "")
	require.Equal(env.t, http.StatusCreated, rec.Code)

	resp := decodeMap(env.t, rec)
	return resp["access_token"].(string), resp["refresh_token"].(string)
}

// registerAdmin seeds an admin directly and logs in over the API.
func (env *testEnv) registerAdmin(username, password string) (access, refresh string) {
	env.t.Helper()

	_, err := env.rp.Register(context.Background(), username, password, true)
	require.NoError(env.t, err)

	rec := env.do(http.MethodPost, "/auth/login",
		map[string]string{"username": username, "password": password}, "")
	require.Equal(env.t, http.StatusOK, rec.Code)

	resp := decodeMap(env.t, rec)
	return resp["access_token"].(string), resp["refresh_token"].(string)
}
