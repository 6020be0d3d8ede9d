package protection

import (
	"context"
)

// Store persists credentials. Implementations live next to the entry repositories.
type Store interface {
	// LoadCredential returns ErrNotFound for a missing entry and ErrForbidden when
	// the entry is owned by another user.
	LoadCredential(ctx context.Context, userID, entryID int) (Credential, error)
	// SaveCredential writes the credential if the stored version still equals cred.Version
	// and returns it with the new version. A stale version yields ErrVersionConflict.
	SaveCredential(ctx context.Context, cred Credential) (Credential, error)
	// DeleteVerified records the successful verification and deletes the entry in one
	// transaction, under the same version check as SaveCredential.
	DeleteVerified(ctx context.Context, cred Credential) error
}

// SessionTerminator ends every session of a user.
type SessionTerminator interface {
	TerminateAll(ctx context.Context, userID int) error
}
