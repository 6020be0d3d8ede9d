package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/exp/slog"
)

const DefaultTTL = 24 * time.Hour

type Servicer interface {
	Create(ctx context.Context, userID int) (string, error)
	Validate(ctx context.Context, token string) (int, error)
	Revoke(ctx context.Context, token string) error
	TerminateAll(ctx context.Context, userID int) error
}

type Service struct {
	repo  Repository
	ttl   time.Duration
	clock clockwork.Clock
	log   *slog.Logger
}

func NewService(repo Repository, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo:  repo,
		ttl:   ttl,
		clock: clockwork.NewRealClock(),
		log:   log.With("component", "session_service"),
	}
}

// WithClock подменяет часы, используется в тестах.
func (s *Service) WithClock(c clockwork.Clock) *Service {
	s.clock = c
	return s
}

func (s *Service) Create(ctx context.Context, userID int) (string, error) {
	// Генерация токена
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)

	expiresAt := s.clock.Now().Add(s.ttl)
	if err := s.repo.Create(ctx, userID, hashToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	s.log.Debug("session created", "user_id", userID, "expires_at", expiresAt)

	return token, nil
}

func (s *Service) Validate(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}
	return s.repo.Validate(ctx, hashToken(token), s.clock.Now())
}

// Revoke ends a single session. Unknown tokens are ignored.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, hashToken(token)); err != nil && !errors.Is(err, ErrInvalidSession) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// TerminateAll logs the user out everywhere.
func (s *Service) TerminateAll(ctx context.Context, userID int) error {
	n, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("terminate sessions: %w", err)
	}

	s.log.Warn("all user sessions terminated", "user_id", userID, "count", n)
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
