package protection

import (
	"context"
	"fmt"
)

// Router records a successful verification and dispatches it to the requested action.
// Delete is fused with the verification so no unauthenticated delete step exists.
type Router struct {
	store  Store
	policy Policy
}

func NewRouter(store Store, policy Policy) *Router {
	return &Router{
		store:  store,
		policy: policy,
	}
}

// Route applies the success transition to cred and performs the action's side effect.
func (r *Router) Route(ctx context.Context, cred Credential, action Action) (Effect, Credential, error) {
	dirty := cred.FailedAttempts != 0 || cred.LockoutUntil != nil
	next := r.policy.OnSuccess(cred)

	switch action {
	case ActionView, ActionEdit:
		if dirty {
			saved, err := r.store.SaveCredential(ctx, next)
			if err != nil {
				return EffectNone, cred, err
			}
			next = saved
		}
		if action == ActionView {
			return EffectProceedView, next, nil
		}
		return EffectProceedEdit, next, nil

	case ActionDelete:
		if err := r.store.DeleteVerified(ctx, next); err != nil {
			return EffectNone, cred, err
		}
		return EffectDeleted, next, nil

	default:
		return EffectNone, cred, fmt.Errorf("%w: %q", ErrUnknownAction, string(action))
	}
}
