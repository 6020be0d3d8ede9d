package entry

import (
	"errors"

	"mydiary/internal/domain/protection"
)

var (
	ErrNotFound        = protection.ErrNotFound
	ErrForbidden       = protection.ErrForbidden
	ErrVersionConflict = protection.ErrVersionConflict
	ErrInvalidData     = errors.New("invalid entry data")
	// ErrPasswordRequired is reported when a protected entry is approached without a password.
	ErrPasswordRequired = protection.ErrPasswordRequired
)
