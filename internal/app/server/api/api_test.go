package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"mydiary/internal/app/server/config"
	"mydiary/internal/infrastructure/storage"
)

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func newTestServer(t *testing.T) *client {
	t.Helper()

	cfg := &config.Config{
		Env: config.EnvLocal,
		DB: config.DB{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "diary.db"),
		},
		Protection: config.Protection{
			MaxAttempts:     3,
			LockoutDuration: 3 * time.Hour,
			BcryptCost:      bcrypt.MinCost,
			HashWorkers:     2,
		},
		Session: config.Session{TTL: time.Hour},
	}

	store, err := storage.Open(context.Background(), cfg.DB, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(New(store, cfg, slog.Default()))
	t.Cleanup(srv.Close)

	return &client{t: t, base: srv.URL}
}

func TestAPI_ProtectedEntryLifecycle(t *testing.T) {
	c := newTestServer(t)
	creds := map[string]string{"login": "alice", "password": "P@ssw0rd123!"}

	resp, _ := c.do(http.MethodPost, "/user/register", creds, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := c.do(http.MethodPost, "/user/login", creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c.token = body["token"].(string)

	resp, body = c.do(http.MethodPost, "/api/entries", map[string]any{
		"title": "Secret day", "body": "hidden", "mood": 3, "password": "pw123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int(body["id"].(float64))
	path := "/api/entries/" + strconv.Itoa(id)

	// список не раскрывает закрытую запись
	resp, body = c.do(http.MethodGet, "/api/entries", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	assert.NotEqual(t, "Secret day", entries[0].(map[string]any)["title"])

	resp, body = c.do(http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "password_required", body["status"])

	resp, body = c.do(http.MethodGet, path, nil, map[string]string{"X-Entry-Password": "pw123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Secret day", body["entry"].(map[string]any)["title"])

	// без пароля ничего не засчитывается
	for i := 0; i < 3; i++ {
		resp, body = c.do(http.MethodDelete, path, nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "password_required", body["status"])

		resp, body = c.do(http.MethodPut, path, map[string]any{"title": "overwritten"}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "password_required", body["status"])

		resp, _ = c.do(http.MethodDelete, path+"/protection", nil, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	resp, body = c.do(http.MethodPost, path+"/verify", map[string]any{"password": "bad"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.EqualValues(t, 2, body["remaining_attempts"])

	c.do(http.MethodPost, path+"/verify", map[string]any{"password": "bad", "action": "view"}, nil)

	resp, body = c.do(http.MethodPost, path+"/verify", map[string]any{"password": "bad", "action": "view"}, nil)
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
	assert.Equal(t, "attempts_exceeded", body["status"])
	assert.Equal(t, true, body["session_terminated"])
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// все сессии завершены
	resp, _ = c.do(http.MethodGet, "/api/entries", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = c.do(http.MethodPost, "/user/login", creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c.token = body["token"].(string)

	resp, body = c.do(http.MethodDelete, path, nil, map[string]string{"X-Entry-Password": "pw123"})
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
	assert.Equal(t, "locked", body["status"])
}

func TestAPI_UnprotectedEntry(t *testing.T) {
	c := newTestServer(t)
	creds := map[string]string{"login": "bob", "password": "P@ssw0rd123!"}

	c.do(http.MethodPost, "/user/register", creds, nil)
	_, body := c.do(http.MethodPost, "/user/login", creds, nil)
	c.token = body["token"].(string)

	_, body = c.do(http.MethodPost, "/api/entries", map[string]any{"title": "Open", "tags": []string{"Park"}}, nil)
	path := "/api/entries/" + strconv.Itoa(int(body["id"].(float64)))

	resp, body := c.do(http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not_protected", body["status"])

	resp, body = c.do(http.MethodPut, path, map[string]any{"title": "Open, edited"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Open, edited", body["entry"].(map[string]any)["title"])

	resp, body = c.do(http.MethodGet, "/api/entries/stats", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total_entries"])

	resp, body = c.do(http.MethodDelete, path, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["deleted"])

	resp, _ = c.do(http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
