package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"mydiary/internal/app/client/config"
	"mydiary/internal/domain/protection"
)

func newTestApp(t *testing.T, handler http.Handler) *App {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		ServerAddress:    strings.TrimPrefix(srv.URL, "http://"),
		ConfigDir:        dir,
		TokenPath:        filepath.Join(dir, "token"),
		RequestTimeout:   5 * time.Second,
		PasswordCacheTTL: time.Minute,
	}

	app, err := New(cfg, slog.Default())
	require.NoError(t, err)
	return app
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestApp_LoginStoresToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": "tok-1", "status": "Ok"})
	})
	mux.HandleFunc("GET /api/entries", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{"entries": []any{}, "total": 0, "limit": 5})
	})
	app := newTestApp(t, mux)
	ctx := context.Background()

	require.NoError(t, app.Login(ctx, "alice", "P@ssw0rd123!"))
	assert.True(t, app.IsAuthenticated())

	info, err := os.Stat(app.config.TokenPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	list, err := app.ListEntries(ctx, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, list.Limit)
}

func TestApp_PasswordCache(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		pw := r.Header.Get("X-Entry-Password")
		mu.Lock()
		seen = append(seen, pw)
		mu.Unlock()
		switch pw {
		case "":
			writeJSON(w, http.StatusForbidden, map[string]any{"status": StatusPasswordRequired})
		case "good":
			writeJSON(w, http.StatusOK, map[string]any{"status": StatusSuccess, "entry": map[string]any{"id": 3, "title": "Secret"}})
		default:
			writeJSON(w, http.StatusForbidden, map[string]any{"status": StatusInvalidPassword, "remaining_attempts": 2})
		}
	})
	app := newTestApp(t, mux)
	ctx := context.Background()

	res, err := app.GetEntry(ctx, 3, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPasswordRequired, res.Status)

	res, err = app.GetEntry(ctx, 3, "good")
	require.NoError(t, err)
	assert.Equal(t, "Secret", res.Entry.Title)

	// пароль берется из кэша
	res, err = app.GetEntry(ctx, 3, "")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)

	res, err = app.GetEntry(ctx, 3, "bad")
	require.NoError(t, err)
	assert.Equal(t, StatusInvalidPassword, res.Status)
	require.NotNil(t, res.RemainingAttempts)
	assert.Equal(t, 2, *res.RemainingAttempts)

	_, ok := app.Cache().Get(3)
	assert.False(t, ok)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "good", "good", "bad"}, seen)
}

func TestApp_AttemptsExceededClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/entries/{id}/verify", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string            `json:"password"`
			Action   protection.Action `json:"action"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, protection.ActionDelete, body.Action)

		w.Header().Set("Retry-After", "10800")
		writeJSON(w, http.StatusLocked, map[string]any{
			"status": StatusAttemptsExceeded, "retry_after_seconds": 10800, "session_terminated": true,
		})
	})
	app := newTestApp(t, mux)
	require.NoError(t, app.SaveToken("tok-1"))
	app.Cache().Put(9, "other")

	res, err := app.VerifyPassword(context.Background(), 3, "bad", protection.ActionDelete)
	require.NoError(t, err)
	assert.True(t, res.SessionTerminated)
	assert.Equal(t, 10800, res.RetryAfterSeconds)

	assert.False(t, app.IsAuthenticated())
	assert.Zero(t, app.Cache().Len())
}

func TestApp_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "1":
			w.Header().Set("Retry-After", "30")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
		case "2":
			writeJSON(w, http.StatusNotFound, map[string]any{"title": "Not Found", "status": 404, "detail": "Entry not found"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
	})
	app := newTestApp(t, mux)
	require.NoError(t, app.SaveToken("tok-1"))
	ctx := context.Background()

	_, err := app.GetEntry(ctx, 1, "pw")
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 30*time.Second, rl.RetryAfter)

	_, err = app.GetEntry(ctx, 2, "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Entry not found", apiErr.Message)

	_, err = app.GetEntry(ctx, 3, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, app.IsAuthenticated())
}

func TestApp_ProtectCachesNewPassword(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/entries/{id}/protection", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": StatusNotProtected})
	})
	mux.HandleFunc("DELETE /api/entries/{id}/protection", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "new-pw", r.Header.Get("X-Entry-Password"))
		writeJSON(w, http.StatusOK, map[string]any{"status": StatusSuccess})
	})
	app := newTestApp(t, mux)
	ctx := context.Background()

	_, err := app.Protect(ctx, 4, "new-pw", "")
	require.NoError(t, err)

	got, ok := app.Cache().Get(4)
	require.True(t, ok)
	assert.Equal(t, "new-pw", got)

	_, err = app.Unprotect(ctx, 4, "")
	require.NoError(t, err)

	_, ok = app.Cache().Get(4)
	assert.False(t, ok)
}
