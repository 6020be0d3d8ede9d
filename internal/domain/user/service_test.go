package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, login, passwordHash string) (int, error) {
	args := m.Called(ctx, login, passwordHash)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FindByLogin(ctx context.Context, login string) (User, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(User), args.Error(1)
}

const strongPassword = "P@ssw0rd123!"

func newTestService(repo Repository) *Service {
	return NewService(repo, NewValidator(DefaultRules()), slog.Default())
}

func TestService_Register(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	login := "testuser"

	mockRepo.On("Create", mock.Anything, login, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strongPassword)) == nil
	})).Return(123, nil)

	userID, err := service.Register(context.Background(), login, strongPassword)
	assert.NoError(t, err)
	assert.Equal(t, 123, userID)

	mockRepo.AssertExpectations(t)
}

func TestService_Register_Errors(t *testing.T) {
	tests := []struct {
		name      string
		login     string
		password  string
		repoErr   error
		callsRepo bool
		expectErr error
	}{
		{
			name:      "Empty login",
			login:     "",
			password:  strongPassword,
			expectErr: ErrInvalidInput,
		},
		{
			name:      "Weak password",
			login:     "testuser",
			password:  "password123",
			expectErr: ErrInvalidInput,
		},
		{
			name:      "Login taken",
			login:     "testuser",
			password:  strongPassword,
			repoErr:   ErrLoginTaken,
			callsRepo: true,
			expectErr: ErrLoginTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := newTestService(mockRepo)

			if tt.callsRepo {
				mockRepo.On("Create", mock.Anything, tt.login, mock.AnythingOfType("string")).Return(0, tt.repoErr)
			}

			_, err := service.Register(context.Background(), tt.login, tt.password)
			assert.ErrorIs(t, err, tt.expectErr)

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_Register_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	mockRepo.On("Create", mock.Anything, "testuser", mock.AnythingOfType("string")).Return(0, errors.New("database error"))

	_, err := service.Register(context.Background(), "testuser", strongPassword)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertExpectations(t)
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strongPassword), bcrypt.MinCost)
	assert.NoError(t, err)

	stored := User{ID: 123, Login: "testuser", Password: string(hash)}

	tests := []struct {
		name      string
		login     string
		password  string
		found     User
		findErr   error
		callsRepo bool
		expectErr error
	}{
		{
			name:      "Valid credentials",
			login:     "testuser",
			password:  strongPassword,
			found:     stored,
			callsRepo: true,
		},
		{
			name:      "Wrong password",
			login:     "testuser",
			password:  "wrong",
			found:     stored,
			callsRepo: true,
			expectErr: ErrInvalidAuth,
		},
		{
			name:      "Unknown login",
			login:     "nobody",
			password:  strongPassword,
			findErr:   ErrNotFound,
			callsRepo: true,
			expectErr: ErrInvalidAuth,
		},
		{
			name:      "Invalid hash",
			login:     "testuser",
			password:  strongPassword,
			found:     User{ID: 123, Login: "testuser", Password: "invalidhash"},
			callsRepo: true,
			expectErr: ErrInvalidAuth,
		},
		{
			name:      "Malformed login",
			login:     "",
			password:  strongPassword,
			expectErr: ErrInvalidAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := newTestService(mockRepo)

			if tt.callsRepo {
				mockRepo.On("FindByLogin", mock.Anything, tt.login).Return(tt.found, tt.findErr)
			}

			u, err := service.Authenticate(context.Background(), tt.login, tt.password)
			if tt.expectErr != nil {
				assert.Equal(t, tt.expectErr, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, stored, u)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
