package protection

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxPasswordLen is the bcrypt input limit.
const MaxPasswordLen = 72

// Hasher is the one-way hashing primitive used for entry passwords.
type Hasher interface {
	Hash(password string) (string, error)
	// Compare reports whether candidate matches hash. A mismatch is not an error.
	Compare(hash, candidate string) (bool, error)
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare uses bcrypt's constant-time comparison of the derived keys.
func (h *BcryptHasher) Compare(hash, candidate string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

// ValidatePassword checks the length limits of a protection password.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is empty", ErrInvalidPassword)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("%w: password is longer than %d bytes", ErrInvalidPassword, MaxPasswordLen)
	}
	return nil
}

// Verifier checks candidate passwords against a credential. It never mutates the credential.
// Hashing is bounded by a weighted semaphore so bcrypt work cannot starve request handling.
type Verifier struct {
	hasher Hasher
	pool   *semaphore.Weighted
}

func NewVerifier(hasher Hasher, workers int) *Verifier {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Verifier{
		hasher: hasher,
		pool:   semaphore.NewWeighted(int64(workers)),
	}
}

func (v *Verifier) Verify(ctx context.Context, cred Credential, candidate string) (bool, error) {
	if !cred.IsProtected {
		return true, nil
	}

	if err := v.pool.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("acquire hash worker: %w", err)
	}
	defer v.pool.Release(1)

	return v.hasher.Compare(cred.PasswordHash, candidate)
}

// Seal hashes a new protection password on the worker pool.
func (v *Verifier) Seal(ctx context.Context, password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	if err := v.pool.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hash worker: %w", err)
	}
	defer v.pool.Release(1)

	return v.hasher.Hash(password)
}
