package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) Validate(ctx context.Context, tokenHash string, now time.Time) (int, error) {
	args := m.Called(ctx, tokenHash, now)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockRepository) DeleteByUser(ctx context.Context, userID int) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *Service {
	return NewService(repo, time.Hour, slog.Default()).WithClock(clockwork.NewFakeClockAt(epoch))
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	userID := 123

	mockRepo.On("Create", mock.Anything, userID, mock.MatchedBy(func(hash string) bool {
		return len(hash) == 64
	}), epoch.Add(time.Hour)).Return(nil)

	token, err := service.Create(context.Background(), userID)
	assert.NoError(t, err)
	// base64 of 32 bytes with padding
	assert.Len(t, token, 44)

	mockRepo.AssertExpectations(t)
}

func TestService_Create_DefaultTTL(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 0, slog.Default()).WithClock(clockwork.NewFakeClockAt(epoch))

	mockRepo.On("Create", mock.Anything, 1, mock.AnythingOfType("string"), epoch.Add(DefaultTTL)).Return(nil)

	_, err := service.Create(context.Background(), 1)
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestService_Create_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("Create", mock.Anything, 123, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(errors.New("database error"))

	_, err := service.Create(context.Background(), 123)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertExpectations(t)
}

func TestService_CreateAndValidate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	var stored string
	mockRepo.On("Create", mock.Anything, 123, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { stored = args.String(2) }).
		Return(nil)

	token, err := service.Create(context.Background(), 123)
	assert.NoError(t, err)

	mockRepo.On("Validate", mock.Anything, mock.MatchedBy(func(hash string) bool {
		return hash == stored
	}), epoch).Return(123, nil)

	userID, err := service.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, 123, userID)

	mockRepo.AssertExpectations(t)
}

func TestService_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		repoErr error
	}{
		{name: "Empty token"},
		{name: "Unknown token", token: "invalid_token", repoErr: ErrInvalidSession},
		{name: "Repository error", token: "test_token", repoErr: errors.New("database error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := newTestService(mockRepo)

			if tt.token != "" {
				mockRepo.On("Validate", mock.Anything, mock.AnythingOfType("string"), epoch).Return(0, tt.repoErr)
			}

			_, err := service.Validate(context.Background(), tt.token)
			assert.Error(t, err)

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Revoke(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("Delete", mock.Anything, hashToken("known")).Return(nil)
	mockRepo.On("Delete", mock.Anything, hashToken("gone")).Return(ErrInvalidSession)
	mockRepo.On("Delete", mock.Anything, hashToken("boom")).Return(errors.New("database error"))

	assert.NoError(t, service.Revoke(context.Background(), "known"))
	assert.NoError(t, service.Revoke(context.Background(), "gone"))
	assert.Error(t, service.Revoke(context.Background(), "boom"))

	mockRepo.AssertExpectations(t)
}

func TestService_TerminateAll(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("DeleteByUser", mock.Anything, 5).Return(int64(3), nil)
	mockRepo.On("DeleteByUser", mock.Anything, 6).Return(int64(0), errors.New("database error"))

	assert.NoError(t, service.TerminateAll(context.Background(), 5))

	err := service.TerminateAll(context.Background(), 6)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertExpectations(t)
}
