package protection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/exp/slog"
)

// maxReloads bounds how often an attempt is re-applied after a concurrent writer won the version race.
const maxReloads = 3

// Gateway is the single entry point for password-gated access to an entry.
type Gateway struct {
	store      Store
	verifier   *Verifier
	policy     Policy
	router     *Router
	terminator SessionTerminator
	clock      clockwork.Clock
	locks      *keyedMutex
	log        *slog.Logger
}

type Option func(*Gateway)

func WithPolicy(p Policy) Option {
	return func(g *Gateway) {
		if p.MaxAttempts > 0 && p.LockoutDuration > 0 {
			g.policy = p
		}
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(g *Gateway) {
		g.clock = c
	}
}

// WithSessionTerminator sets who ends the user's sessions once an entry gets locked.
func WithSessionTerminator(t SessionTerminator) Option {
	return func(g *Gateway) {
		g.terminator = t
	}
}

func NewGateway(store Store, verifier *Verifier, log *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		store:    store,
		verifier: verifier,
		policy:   DefaultPolicy(),
		clock:    clockwork.NewRealClock(),
		locks:    newKeyedMutex(),
		log:      log.With("component", "access_gateway"),
	}

	for _, opt := range opts {
		opt(g)
	}

	g.router = NewRouter(store, g.policy)

	return g
}

func (g *Gateway) Policy() Policy {
	return g.policy
}

// Authorize runs one counted attempt. Attempts against the same entry are serialized;
// once the credential is loaded the attempt is recorded even if ctx is cancelled.
// An empty password on a protected entry is refused with ErrPasswordRequired and not counted.
func (g *Gateway) Authorize(ctx context.Context, req Request) (Outcome, error) {
	if err := req.Action.Validate(); err != nil {
		return Outcome{}, err
	}

	unlock := g.locks.Lock(req.EntryID)
	defer unlock()

	return g.authorize(ctx, req)
}

// Seal protects an entry with newPassword. An already protected entry requires
// currentPassword and counts as an edit attempt.
func (g *Gateway) Seal(ctx context.Context, req Request, newPassword string) (Outcome, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return Outcome{}, err
	}

	unlock := g.locks.Lock(req.EntryID)
	defer unlock()

	req.Action = ActionEdit
	out, err := g.authorize(ctx, req)
	if err != nil || !out.Granted() {
		return out, err
	}

	ctx = context.WithoutCancel(ctx)

	hash, err := g.verifier.Seal(ctx, newPassword)
	if err != nil {
		g.log.Error("failed to hash entry password", "entry_id", req.EntryID, "error", err)
		return Outcome{}, fmt.Errorf("%w: seal: %v", ErrInternal, err)
	}

	saved, err := g.store.SaveCredential(ctx, out.Credential.Protected(hash))
	if err != nil {
		return Outcome{}, g.storeError(req, "seal", err)
	}

	g.log.Info("entry protection set", "entry_id", req.EntryID, "user_id", req.UserID)
	out.Credential = saved
	return out, nil
}

// Unseal removes the protection after verifying the current password.
func (g *Gateway) Unseal(ctx context.Context, req Request) (Outcome, error) {
	unlock := g.locks.Lock(req.EntryID)
	defer unlock()

	req.Action = ActionEdit
	out, err := g.authorize(ctx, req)
	if err != nil || out.Kind != OutcomeSuccess {
		return out, err
	}

	saved, err := g.store.SaveCredential(context.WithoutCancel(ctx), out.Credential.Unprotected())
	if err != nil {
		return Outcome{}, g.storeError(req, "unseal", err)
	}

	g.log.Info("entry protection removed", "entry_id", req.EntryID, "user_id", req.UserID)
	out.Credential = saved
	return out, nil
}

func (g *Gateway) authorize(ctx context.Context, req Request) (Outcome, error) {
	cred, err := g.load(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	ctx = context.WithoutCancel(ctx)

	var (
		matched     bool
		checked     bool
		checkedHash string
	)

	for reloads := 0; ; reloads++ {
		var out Outcome

		if !cred.IsProtected {
			out, err = g.pass(ctx, req, cred)
		} else {
			now := g.clock.Now()

			if adm := g.policy.Admit(cred, now); !adm.Allowed {
				g.log.Info("entry locked, attempt refused",
					"entry_id", req.EntryID,
					"user_id", req.UserID,
					"action", req.Action,
					"outcome", OutcomeLocked,
					"retry_after", adm.RetryAfter,
				)
				return Outcome{Kind: OutcomeLocked, RetryAfter: adm.RetryAfter, Credential: cred}, nil
			}

			// пустой пароль не считается попыткой
			if req.Password == "" {
				g.log.Debug("protected entry approached without password",
					"entry_id", req.EntryID,
					"user_id", req.UserID,
					"action", req.Action,
				)
				return Outcome{}, ErrPasswordRequired
			}

			// The hash only changes when the password was reset concurrently.
			if !checked || checkedHash != cred.PasswordHash {
				matched, err = g.verifier.Verify(ctx, cred, req.Password)
				if err != nil {
					g.log.Error("failed to verify entry password", "entry_id", req.EntryID, "error", err)
					return Outcome{}, fmt.Errorf("%w: verify: %v", ErrInternal, err)
				}
				checked, checkedHash = true, cred.PasswordHash
			}

			cred = g.policy.Acknowledge(cred, now)
			if matched {
				out, err = g.succeed(ctx, req, cred)
			} else {
				out, err = g.fail(ctx, req, cred, now)
			}
		}

		if err == nil {
			return out, nil
		}
		if !errors.Is(err, ErrVersionConflict) || reloads >= maxReloads {
			return Outcome{}, g.storeError(req, "record attempt", err)
		}

		g.log.Debug("credential changed concurrently, reloading", "entry_id", req.EntryID, "reload", reloads+1)

		if cred, err = g.load(ctx, req); err != nil {
			return Outcome{}, err
		}
	}
}

func (g *Gateway) pass(ctx context.Context, req Request, cred Credential) (Outcome, error) {
	effect, saved, err := g.router.Route(ctx, cred, req.Action)
	if err != nil {
		return Outcome{}, err
	}

	g.log.Debug("authorization requested for unprotected entry",
		"entry_id", req.EntryID,
		"user_id", req.UserID,
		"action", req.Action,
		"outcome", OutcomeNotProtected,
	)

	return Outcome{Kind: OutcomeNotProtected, Effect: effect, Credential: saved}, nil
}

func (g *Gateway) succeed(ctx context.Context, req Request, cred Credential) (Outcome, error) {
	effect, saved, err := g.router.Route(ctx, cred, req.Action)
	if err != nil {
		return Outcome{}, err
	}

	g.log.Info("entry password verified",
		"entry_id", req.EntryID,
		"user_id", req.UserID,
		"action", req.Action,
		"effect", effect,
		"outcome", OutcomeSuccess,
	)

	return Outcome{
		Kind:              OutcomeSuccess,
		Effect:            effect,
		RemainingAttempts: g.policy.MaxAttempts,
		Credential:        saved,
	}, nil
}

func (g *Gateway) fail(ctx context.Context, req Request, cred Credential, now time.Time) (Outcome, error) {
	next, exceeded := g.policy.OnFailure(cred, now)

	saved, err := g.store.SaveCredential(ctx, next)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Kind:              OutcomeInvalidPassword,
		RemainingAttempts: g.policy.Remaining(next),
		Credential:        saved,
	}

	if !exceeded {
		g.log.Info("invalid entry password",
			"entry_id", req.EntryID,
			"user_id", req.UserID,
			"action", req.Action,
			"outcome", out.Kind,
			"remaining_attempts", out.RemainingAttempts,
		)
		return out, nil
	}

	out.Kind = OutcomeAttemptsExceeded
	out.RetryAfter = next.LockoutUntil.Sub(now)
	out.SessionsTerminated = g.terminate(ctx, req.UserID)

	g.log.Warn("entry locked after too many failed attempts",
		"entry_id", req.EntryID,
		"user_id", req.UserID,
		"action", req.Action,
		"outcome", out.Kind,
		"lockout_until", next.LockoutUntil,
		"sessions_terminated", out.SessionsTerminated,
	)

	return out, nil
}

func (g *Gateway) terminate(ctx context.Context, userID int) bool {
	if g.terminator == nil {
		g.log.Warn("no session terminator configured", "user_id", userID)
		return false
	}

	if err := g.terminator.TerminateAll(ctx, userID); err != nil {
		g.log.Error("failed to terminate user sessions", "user_id", userID, "error", err)
		return false
	}

	return true
}

func (g *Gateway) load(ctx context.Context, req Request) (Credential, error) {
	cred, err := g.store.LoadCredential(ctx, req.UserID, req.EntryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return Credential{}, err
		}
		g.log.Error("failed to load credential", "entry_id", req.EntryID, "user_id", req.UserID, "error", err)
		return Credential{}, fmt.Errorf("%w: load credential: %v", ErrInternal, err)
	}
	return cred, nil
}

func (g *Gateway) storeError(req Request, op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrVersionConflict):
		g.log.Warn("gave up on concurrent credential updates", "entry_id", req.EntryID, "op", op)
		return fmt.Errorf("%s: %w", op, ErrVersionConflict)
	default:
		g.log.Error("failed to persist credential", "entry_id", req.EntryID, "op", op, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
	}
}
