package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"mydiary/internal/app/server/api/http/middleware/auth"
	"mydiary/internal/domain/user"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, login, password string) (int, error) {
	args := m.Called(ctx, login, password)
	return args.Int(0), args.Error(1)
}

func (m *MockService) Authenticate(ctx context.Context, login, password string) (user.User, error) {
	args := m.Called(ctx, login, password)
	return args.Get(0).(user.User), args.Error(1)
}

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

func statusOf(t *testing.T, err error) int {
	t.Helper()

	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected huma status error, got %v", err)
	return se.GetStatus()
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "ok"},
		{name: "invalid input", serviceErr: fmt.Errorf("%w: weak password", user.ErrInvalidInput), wantStatus: http.StatusBadRequest},
		{name: "login taken", serviceErr: user.ErrLoginTaken, wantStatus: http.StatusConflict},
		{name: "storage failure", serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			h := NewHandler(svc, new(MockSession), slog.Default(), nil, nil)

			svc.On("Register", mock.Anything, "alice", "P@ssw0rd1").Return(5, tt.serviceErr)

			input := &registerInput{Body: BaseRequest{Login: "alice", Password: "P@ssw0rd1"}}
			out, err := h.register(context.Background(), input)

			if tt.wantStatus != 0 {
				assert.Nil(t, out)
				assert.Equal(t, tt.wantStatus, statusOf(t, err))
				assert.NotContains(t, err.Error(), "db down")
			} else {
				require.NoError(t, err)
				assert.Equal(t, 5, out.Body.ID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	svc := new(MockService)
	sess := new(MockSession)
	h := NewHandler(svc, sess, slog.Default(), nil, nil)

	svc.On("Authenticate", mock.Anything, "alice", "right").Return(user.User{ID: 5}, nil)
	svc.On("Authenticate", mock.Anything, "alice", "wrong").Return(user.User{}, user.ErrInvalidAuth)
	sess.On("Create", mock.Anything, 5).Return("token-1", nil)

	out, err := h.login(context.Background(), &loginInput{Body: BaseRequest{Login: "alice", Password: "right"}})
	require.NoError(t, err)
	assert.Equal(t, "token-1", out.Body.Token)

	_, err = h.login(context.Background(), &loginInput{Body: BaseRequest{Login: "alice", Password: "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	svc.AssertExpectations(t)
	sess.AssertExpectations(t)
}

func TestHandler_Logout(t *testing.T) {
	sess := new(MockSession)
	h := NewHandler(new(MockService), sess, slog.Default(), nil, nil)

	sess.On("Revoke", mock.Anything, "token-1").Return(nil)

	ctx := context.WithValue(auth.WithUserID(context.Background(), 5), auth.TokenKey, "token-1")
	out, err := h.logout(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ok", out.Body.Status)

	_, err = h.logout(context.Background(), nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	sess.AssertExpectations(t)
}
