package entry

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"mydiary/internal/domain/protection"
)

const (
	MaxTitleLen = 200
	MinMood     = 1
	MaxMood     = 10

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Entry is a stored diary entry together with its protection state.
// It is never serialized directly; responses go through View.
type Entry struct {
	ID          int
	UserID      int
	Title       string
	Body        string
	Tags        []string
	Attachments []string
	Mood        *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int

	IsProtected    bool
	PasswordHash   string
	FailedAttempts int
	LockoutUntil   *time.Time
}

func (e Entry) Credential() protection.Credential {
	return protection.Credential{
		EntryID:        e.ID,
		UserID:         e.UserID,
		IsProtected:    e.IsProtected,
		PasswordHash:   e.PasswordHash,
		FailedAttempts: e.FailedAttempts,
		LockoutUntil:   e.LockoutUntil,
		Version:        e.Version,
	}
}

// Input is the editable content of an entry.
type Input struct {
	Title       string
	Body        string
	Tags        []string
	Attachments []string
	Mood        *int
}

func (in Input) Validate() error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidData)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("%w: title is longer than %d characters", ErrInvalidData, MaxTitleLen)
	}
	if in.Mood != nil && (*in.Mood < MinMood || *in.Mood > MaxMood) {
		return fmt.Errorf("%w: mood must be between %d and %d", ErrInvalidData, MinMood, MaxMood)
	}
	for _, tag := range in.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: empty tag", ErrInvalidData)
		}
	}
	return nil
}

func (in Input) apply(e *Entry) {
	e.Title = strings.TrimSpace(in.Title)
	e.Body = in.Body
	e.Tags = normalizeTags(in.Tags)
	e.Attachments = append([]string{}, in.Attachments...)
	e.Mood = in.Mood
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Page is a limit/offset window over the entries of a user.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Criteria filters a search. Text and mood filters never match protected entries.
type Criteria struct {
	Query   string
	MoodMin *int
	MoodMax *int
	From    *time.Time
	To      *time.Time
	Page    Page
}
