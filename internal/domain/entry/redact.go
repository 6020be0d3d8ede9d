package entry

import (
	"time"

	"mydiary/internal/domain/protection"
)

const (
	PlaceholderTitle = "Protected entry"
	PlaceholderBody  = "This entry is protected by a password."
)

// View is the only shape in which an entry leaves the service. Fields are
// listed explicitly so new Entry fields are not exposed by accident.
type View struct {
	ID          int       `json:"id" doc:"ID записи"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Tags        []string  `json:"tags"`
	Attachments []string  `json:"attachments"`
	Mood        *int      `json:"mood" doc:"Настроение 1-10, null для закрытых записей"`
	IsProtected bool      `json:"is_protected"`
	Locked      bool      `json:"locked" doc:"Содержимое скрыто до ввода пароля"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Project copies the public fields of an entry without redaction.
func Project(e Entry) View {
	return View{
		ID:          e.ID,
		Title:       e.Title,
		Body:        e.Body,
		Tags:        append([]string{}, e.Tags...),
		Attachments: append([]string{}, e.Attachments...),
		Mood:        copyInt(e.Mood),
		IsProtected: e.IsProtected,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// Redact projects e and hides its content unless e is unprotected or its id is in verified.
func Redact(e Entry, verified protection.VerifiedSet) View {
	v := Project(e)
	if !e.IsProtected || verified.Has(e.ID) {
		return v
	}
	return RedactView(v)
}

// RedactView replaces the sensitive fields with placeholders. Mood is nulled so it
// does not skew aggregates. Applying it twice gives the same result.
func RedactView(v View) View {
	v.Title = PlaceholderTitle
	v.Body = PlaceholderBody
	v.Tags = []string{}
	v.Attachments = []string{}
	v.Mood = nil
	v.IsProtected = true
	v.Locked = true
	return v
}

func RedactAll(entries []Entry, verified protection.VerifiedSet) []View {
	views := make([]View, len(entries))
	for i, e := range entries {
		views[i] = Redact(e, verified)
	}
	return views
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
