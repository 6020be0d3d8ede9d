package protection

import (
	"fmt"
	"time"
)

// Credential is the protection state stored alongside a diary entry.
type Credential struct {
	EntryID        int
	UserID         int
	IsProtected    bool
	PasswordHash   string `json:"-"`
	FailedAttempts int
	LockoutUntil   *time.Time
	// Version is the optimistic concurrency token of the entry row.
	Version int
}

// Validate checks the relation between the protection flag and the rest of the fields.
func (c Credential) Validate() error {
	if c.FailedAttempts < 0 {
		return fmt.Errorf("%w: negative failed attempts", ErrInvalidCredential)
	}

	if !c.IsProtected {
		if c.PasswordHash != "" || c.FailedAttempts != 0 || c.LockoutUntil != nil {
			return fmt.Errorf("%w: unprotected entry carries protection state", ErrInvalidCredential)
		}
		return nil
	}

	if c.PasswordHash == "" {
		return fmt.Errorf("%w: protected entry without password hash", ErrInvalidCredential)
	}

	return nil
}

// Unprotected returns the credential with protection removed.
func (c Credential) Unprotected() Credential {
	c.IsProtected = false
	c.PasswordHash = ""
	c.FailedAttempts = 0
	c.LockoutUntil = nil
	return c
}

// Protected returns the credential sealed with a new password hash and clean counters.
func (c Credential) Protected(hash string) Credential {
	c.IsProtected = true
	c.PasswordHash = hash
	c.FailedAttempts = 0
	c.LockoutUntil = nil
	return c
}
