package protection

import (
	"errors"
)

var (
	ErrNotFound          = errors.New("entry not found")
	ErrForbidden         = errors.New("entry belongs to another user")
	ErrVersionConflict   = errors.New("entry version conflict")
	ErrInvalidCredential = errors.New("invalid credential state")
	ErrInvalidPassword   = errors.New("invalid protection password")
	ErrUnknownAction     = errors.New("unknown action")
	// ErrPasswordRequired: a protected entry was approached without a password; nothing is counted.
	ErrPasswordRequired = errors.New("password required")
	ErrInternal         = errors.New("internal protection failure")
)
