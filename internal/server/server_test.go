package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/todoapp/internal/database/databasetest"
	"github.com/gurkanbulca/todoapp/internal/logger"
	"github.com/gurkanbulca/todoapp/pkg/auth"
	"github.com/gurkanbulca/todoapp/pkg/email"
	"github.com/gurkanbulca/todoapp/pkg/storage"

	"github.com/gurkanbulca/todoapp/internal/service"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	mailer  *email.MockEmailService
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := databasetest.Open(t)
	media := storage.New(afero.NewMemMapFs())
	mailer := email.NewMockEmailService()
	tokens := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	passwords := auth.NewPasswordManager(auth.DefaultPasswordPolicy()).WithCost(bcrypt.MinCost)
	log := logger.Discard()

	srv := New(Services{
		Accounts:    service.NewAccountService(db, tokens, passwords, mailer, media, log),
		Todos:       service.NewTodoService(db, media, log, service.TodoOptions{Location: time.UTC, PageSize: 10, RecentLimit: 5}),
		Tags:        service.NewTagService(db, log, 20),
		Attachments: service.NewAttachmentService(db, media, log),
		Contact:     service.NewContactService(mailer, "admin@example.com", log),
	}, db, log, Options{MaxUploadSize: 64})

	return &testServer{t: t, handler: srv.Handler(), mailer: mailer}
}

func (ts *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(path, token, field, filename string, content []byte) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(ts.t, err)
	_, err = part.Write(content)
	require.NoError(ts.t, err)
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// signup registers a user and returns its access token.
func (ts *testServer) signup(emailAddr string) string {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": emailAddr, "password": "Secret123", "password_confirm": "Secret123",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	var session struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session.Tokens.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	srv := New(Services{Accounts: &service.AccountService{}}, fakePinger{err: errors.New("down")}, logger.Discard(), Options{})
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.signup("alice@example.com")

	rec := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ALICE@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var session struct {
		Tokens auth.TokenPair `json:"tokens"`
	}
	decode(t, rec, &session)

	rec = ts.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": session.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/profile", session.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
	assert.NotContains(t, rec.Body.String(), "password")

	rec = ts.do(http.MethodPost, "/api/auth/logout", session.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": session.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupValidationResponse(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "bob@example.com", "password": "Secret123", "password_confirm": "Secret124",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	decode(t, rec, &body)
	require.NotEmpty(t, body.Fields)
	assert.Equal(t, "password_confirm", body.Fields[0].Field)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOversizedJSONBody(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup("gwen@example.com")

	rec := ts.do(http.MethodPost, "/api/todos", token, map[string]string{
		"title":       "big",
		"description": strings.Repeat("d", maxJSONBody),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request body too large.")
	assert.NotContains(t, rec.Body.String(), "Upload")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/todos"},
		{http.MethodPost, "/api/todos"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/tags"},
		{http.MethodDelete, "/api/todos/1"},
		{http.MethodGet, "/api/profile"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := ts.do(route.method, route.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestTodoEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup("carol@example.com")
	otherToken := ts.signup("dave@example.com")

	rec := ts.do(http.MethodPost, "/api/todos", token, map[string]interface{}{
		"title": "  Buy milk  ", "priority": 1, "new_tags": "home, errands",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Status   string `json:"status"`
		Priority int    `json:"priority"`
		Tags     []struct {
			Name string `json:"name"`
		} `json:"tags"`
	}
	decode(t, rec, &created)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "open", created.Status)
	assert.Len(t, created.Tags, 2)

	todoPath := fmt.Sprintf("/api/todos/%d", created.ID)

	rec = ts.do(http.MethodGet, todoPath, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "other profiles cannot see the todo")

	rec = ts.do(http.MethodGet, "/api/todos/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, todoPath+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"done"`)
	assert.Contains(t, rec.Body.String(), `"completed_at"`)

	rec = ts.do(http.MethodPost, todoPath+"/archive", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"archived"`)

	rec = ts.do(http.MethodPut, todoPath, token, map[string]interface{}{"title": "", "priority": 2})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"title"`)

	rec = ts.do(http.MethodGet, "/api/todos?status=archived", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)

	rec = ts.do(http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"archived":1`)

	rec = ts.do(http.MethodDelete, todoPath, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(http.MethodDelete, todoPath, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodGet, todoPath, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTagEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup("erin@example.com")

	rec := ts.do(http.MethodPost, "/api/tags", token, map[string]string{"name": "Work"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tag struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &tag)

	rec = ts.do(http.MethodPost, "/api/tags", token, map[string]string{"name": "work"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/tags", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = ts.do(http.MethodDelete, fmt.Sprintf("/api/tags/%d", tag.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAttachmentEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup("frank@example.com")

	rec := ts.do(http.MethodPost, "/api/todos", token, map[string]string{"title": "with file"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var todo struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &todo)
	base := fmt.Sprintf("/api/todos/%d/attachments", todo.ID)

	rec = ts.upload(base, token, "file", "notes.txt", []byte("hello"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &a)

	rec = ts.upload(base, token, "file", "big.bin", bytes.Repeat([]byte("x"), 65))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload too large.")

	rec = ts.do(http.MethodGet, fmt.Sprintf("%s/%d", base, a.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "notes.txt")

	rec = ts.do(http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes.txt")

	rec = ts.do(http.MethodDelete, fmt.Sprintf("%s/%d", base, a.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestContactAlwaysAccepted(t *testing.T) {
	ts := newTestServer(t)
	ts.mailer.Err = errors.New("smtp down")

	rec := ts.do(http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "message": "Hello",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = ts.do(http.MethodPost, "/api/contact", "", map[string]string{"name": "Ann"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodOptions, "/api/todos", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
