package protection

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// Action is what the caller intends to do with a protected entry once the password is verified.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

func (Action) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(ActionView),
			string(ActionEdit),
			string(ActionDelete),
		},
		Description: "Действие после проверки пароля записи",
		Examples:    []any{ActionView},
	}
}

// Validate rejects anything outside the closed set of actions.
func (a Action) Validate() error {
	switch a {
	case ActionView, ActionEdit, ActionDelete:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, string(a))
}

// ParseAction converts a boundary string into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

func (a Action) String() string {
	return string(a)
}

// Effect is the routed result of a successful verification.
type Effect int

const (
	EffectNone Effect = iota
	EffectProceedView
	EffectProceedEdit
	EffectDeleted
)

func (e Effect) String() string {
	switch e {
	case EffectProceedView:
		return "proceed_view"
	case EffectProceedEdit:
		return "proceed_edit"
	case EffectDeleted:
		return "deleted"
	default:
		return "none"
	}
}
