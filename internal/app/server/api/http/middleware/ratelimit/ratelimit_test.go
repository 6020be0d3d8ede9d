package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"

	"mydiary/internal/app/server/api/http/middleware/auth"
)

type pingOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func setup(t *testing.T, l *Limiter, userID int) humatest.TestAPI {
	_, api := humatest.New(t)

	withUser := func(ctx huma.Context, next func(huma.Context)) {
		next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), userID)))
	}

	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodPost,
		Path:        "/ping",
		Middlewares: huma.Middlewares{withUser, l.Middleware()},
	}, func(context.Context, *struct{}) (*pingOutput, error) {
		out := &pingOutput{}
		out.Body.OK = true
		return out, nil
	})

	return api
}

func TestLimiter_BlocksAfterBurst(t *testing.T) {
	l := New(2, slog.Default())
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	api := setup(t, l, 1)

	assert.Equal(t, http.StatusOK, api.Post("/ping").Code)
	assert.Equal(t, http.StatusOK, api.Post("/ping").Code)

	resp := api.Post("/ping")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "30", resp.Header().Get("Retry-After"))

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, api.Post("/ping").Code)
}

func TestLimiter_Disabled(t *testing.T) {
	api := setup(t, New(0, slog.Default()), 1)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, api.Post("/ping").Code)
	}
}

func TestLimiter_PerUser(t *testing.T) {
	l := New(1, slog.Default())
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	first := setup(t, l, 1)
	second := setup(t, l, 2)

	assert.Equal(t, http.StatusOK, first.Post("/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, first.Post("/ping").Code)
	assert.Equal(t, http.StatusOK, second.Post("/ping").Code)
}
