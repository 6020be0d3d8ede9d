package protection

import (
	"time"
)

const (
	DefaultMaxAttempts     = 3
	DefaultLockoutDuration = 3 * time.Hour
)

// State of a credential as observed at a given moment.
type State int

const (
	StateOpen State = iota
	StateLocked
)

func (s State) String() string {
	if s == StateLocked {
		return "locked"
	}
	return "open"
}

// Policy turns the attempt history of a credential into lockout transitions.
// The lockout is flat: every cycle starts from zero failures and lasts LockoutDuration.
type Policy struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     DefaultMaxAttempts,
		LockoutDuration: DefaultLockoutDuration,
	}
}

// Admission is the answer of the policy gate.
type Admission struct {
	Allowed    bool
	RetryAfter time.Duration
}

func (p Policy) Admit(cred Credential, now time.Time) Admission {
	if cred.LockoutUntil != nil && cred.LockoutUntil.After(now) {
		return Admission{RetryAfter: cred.LockoutUntil.Sub(now)}
	}
	return Admission{Allowed: true}
}

func (p Policy) State(cred Credential, now time.Time) State {
	if p.Admit(cred, now).Allowed {
		return StateOpen
	}
	return StateLocked
}

// Acknowledge resets the counter of a lockout whose window has already passed.
// LockoutUntil itself stays until the next successful verification.
func (p Policy) Acknowledge(cred Credential, now time.Time) Credential {
	if cred.LockoutUntil == nil || cred.LockoutUntil.After(now) {
		return cred
	}
	if cred.FailedAttempts >= p.MaxAttempts {
		cred.FailedAttempts = 0
	}
	return cred
}

// OnFailure records a failed verification. exceeded is true for the failure that starts a lockout.
func (p Policy) OnFailure(cred Credential, now time.Time) (next Credential, exceeded bool) {
	cred.FailedAttempts++
	if cred.FailedAttempts < p.MaxAttempts {
		return cred, false
	}

	until := now.Add(p.LockoutDuration)
	if cred.LockoutUntil != nil && cred.LockoutUntil.After(until) {
		until = *cred.LockoutUntil
	}
	cred.LockoutUntil = &until

	return cred, true
}

func (p Policy) OnSuccess(cred Credential) Credential {
	cred.FailedAttempts = 0
	cred.LockoutUntil = nil
	return cred
}

// Remaining is the number of failures left before the next lockout.
func (p Policy) Remaining(cred Credential) int {
	return max(0, p.MaxAttempts-cred.FailedAttempts)
}
