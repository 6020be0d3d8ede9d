package entry

import (
	"context"

	"mydiary/internal/domain/protection"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) (int, error)
	Get(ctx context.Context, userID, entryID int) (*Entry, error)
	List(ctx context.Context, userID int, page Page) ([]Entry, int, error)
	ListAll(ctx context.Context, userID int) ([]Entry, error)
	// Search returns one page of matches and the number of all matches.
	Search(ctx context.Context, userID int, criteria Criteria) ([]Entry, int, error)
	// UpdateContent writes the content fields if e.Version is still current and bumps the version.
	UpdateContent(ctx context.Context, e *Entry) error

	protection.Store
}
