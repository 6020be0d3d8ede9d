package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"mydiary/internal/domain/session"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Create(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSession) Validate(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func (m *MockSession) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockSession) TerminateAll(ctx context.Context, userID int) error {
	return m.Called(ctx, userID).Error(0)
}

type whoamiOutput struct {
	Body struct {
		UserID int    `json:"user_id"`
		Token  string `json:"token"`
	}
}

func setup(t *testing.T, svc session.Servicer) humatest.TestAPI {
	_, api := humatest.New(t)
	a := New(svc, slog.Default())

	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
		Middlewares: huma.Middlewares{a.Middleware()},
	}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
		out := &whoamiOutput{}
		out.Body.UserID, _ = GetUserID(ctx)
		out.Body.Token, _ = GetToken(ctx)
		return out, nil
	})

	return api
}

func TestAuth_Middleware(t *testing.T) {
	svc := new(MockSession)
	svc.On("Validate", mock.Anything, "good").Return(42, nil)
	svc.On("Validate", mock.Anything, "revoked").Return(0, session.ErrInvalidSession)

	api := setup(t, svc)

	resp := api.Get("/whoami", "Authorization: Bearer good")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"user_id":42`)
	assert.Contains(t, resp.Body.String(), `"token":"good"`)

	resp = api.Get("/whoami", "Authorization: Bearer revoked")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/whoami", "Authorization: Basic abc")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/whoami")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	svc.AssertExpectations(t)
}

func TestWithUserID(t *testing.T) {
	ctx := WithUserID(context.Background(), 7)

	id, ok := GetUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, 7, id)

	_, ok = GetUserID(context.Background())
	assert.False(t, ok)
}
