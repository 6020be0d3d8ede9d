package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	// Validate returns the owner of a live session.
	Validate(ctx context.Context, tokenHash string, now time.Time) (int, error)
	Delete(ctx context.Context, tokenHash string) error
	// DeleteByUser ends every session of the user and returns how many there were.
	DeleteByUser(ctx context.Context, userID int) (int64, error)
}
