package protection

import (
	"time"
)

type OutcomeKind int

const (
	// OutcomeNotProtected means no password gate applies; access is granted without verification.
	OutcomeNotProtected OutcomeKind = iota
	OutcomeSuccess
	OutcomeInvalidPassword
	OutcomeLocked
	// OutcomeAttemptsExceeded is the failure that started a lockout. The user's sessions are terminated.
	OutcomeAttemptsExceeded
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNotProtected:
		return "not_protected"
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidPassword:
		return "invalid_password"
	case OutcomeLocked:
		return "locked"
	case OutcomeAttemptsExceeded:
		return "attempts_exceeded"
	default:
		return "unknown"
	}
}

// Outcome is the result of one authorization attempt.
type Outcome struct {
	Kind              OutcomeKind
	Effect            Effect
	RemainingAttempts int
	RetryAfter        time.Duration
	// SessionsTerminated reports whether every session of the user was ended
	// after an OutcomeAttemptsExceeded.
	SessionsTerminated bool
	// Credential is the stored state after the attempt. Never serialized.
	Credential Credential `json:"-"`
}

// Granted reports whether the caller may proceed with the requested action.
func (o Outcome) Granted() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomeNotProtected
}

// Request is a single authorization attempt against an entry.
type Request struct {
	UserID   int
	EntryID  int
	Password string
	Action   Action
}

// VerifiedSet holds the ids of entries whose password was verified in the current request.
// It is built per request and never persisted.
type VerifiedSet map[int]struct{}

func NewVerifiedSet(ids ...int) VerifiedSet {
	s := make(VerifiedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s VerifiedSet) Add(id int) {
	s[id] = struct{}{}
}

func (s VerifiedSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}
