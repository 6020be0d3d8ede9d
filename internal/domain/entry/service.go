package entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"mydiary/internal/domain/protection"
)

// Gatekeeper is the password gate in front of protected entries.
type Gatekeeper interface {
	Authorize(ctx context.Context, req protection.Request) (protection.Outcome, error)
	Seal(ctx context.Context, req protection.Request, newPassword string) (protection.Outcome, error)
	Unseal(ctx context.Context, req protection.Request) (protection.Outcome, error)
}

// Sealer hashes new protection passwords.
type Sealer interface {
	Seal(ctx context.Context, password string) (string, error)
}

type Servicer interface {
	Create(ctx context.Context, userID int, in Input, password string) (View, error)
	List(ctx context.Context, userID int, page Page) (ListResponse, error)
	Search(ctx context.Context, userID int, criteria Criteria) (ListResponse, error)
	Get(ctx context.Context, userID, entryID int, password string) (Result, error)
	Verify(ctx context.Context, userID, entryID int, password string, action protection.Action) (Result, error)
	Update(ctx context.Context, userID, entryID int, in Input, password string) (Result, error)
	Protect(ctx context.Context, userID, entryID int, newPassword, currentPassword string) (Result, error)
	Unprotect(ctx context.Context, userID, entryID int, currentPassword string) (Result, error)
	Delete(ctx context.Context, userID, entryID int, password string) (Result, error)
	Stats(ctx context.Context, userID int) (Stats, error)
}

// Result carries the gate outcome and, when access was granted, the entry.
type Result struct {
	Outcome protection.Outcome
	// PasswordRequired is set when a protected entry was approached without a password.
	PasswordRequired bool
	Entry            *View
}

// Err reports a refused read as an error.
func (r Result) Err() error {
	if r.PasswordRequired {
		return ErrPasswordRequired
	}
	return nil
}

type ListResponse struct {
	Entries []View `json:"entries"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

type Service struct {
	repo   Repository
	gate   Gatekeeper
	sealer Sealer
	log    *slog.Logger
}

func NewService(repo Repository, gate Gatekeeper, sealer Sealer, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		sealer: sealer,
		log:    log.With("component", "entry_service"),
	}
}

// Create stores a new entry. A non-empty password seals it right away.
func (s *Service) Create(ctx context.Context, userID int, in Input, password string) (View, error) {
	if err := in.Validate(); err != nil {
		return View{}, err
	}

	e := &Entry{UserID: userID}
	in.apply(e)

	if password != "" {
		hash, err := s.sealer.Seal(ctx, password)
		if err != nil {
			if errors.Is(err, protection.ErrInvalidPassword) {
				return View{}, err
			}
			s.log.Error("failed to hash entry password", "user_id", userID, "error", err)
			return View{}, fmt.Errorf("seal entry: %w", protection.ErrInternal)
		}
		e.IsProtected = true
		e.PasswordHash = hash
	}

	id, err := s.repo.Create(ctx, e)
	if err != nil {
		s.log.Error("failed to create entry", "user_id", userID, "error", err)
		return View{}, fmt.Errorf("create entry: %w", err)
	}
	e.ID = id

	s.log.Info("entry created", "entry_id", id, "user_id", userID, "protected", e.IsProtected)

	// the author has just supplied the password
	return Redact(*e, protection.NewVerifiedSet(id)), nil
}

func (s *Service) List(ctx context.Context, userID int, page Page) (ListResponse, error) {
	page = page.Normalize()

	entries, total, err := s.repo.List(ctx, userID, page)
	if err != nil {
		s.log.Error("failed to list entries", "user_id", userID, "error", err)
		return ListResponse{}, fmt.Errorf("list entries: %w", err)
	}

	return ListResponse{
		Entries: RedactAll(entries, nil),
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
	}, nil
}

func (s *Service) Search(ctx context.Context, userID int, criteria Criteria) (ListResponse, error) {
	criteria.Page = criteria.Page.Normalize()

	entries, total, err := s.repo.Search(ctx, userID, criteria)
	if err != nil {
		s.log.Error("failed to search entries", "user_id", userID, "error", err)
		return ListResponse{}, fmt.Errorf("search entries: %w", err)
	}

	return ListResponse{
		Entries: RedactAll(entries, nil),
		Total:   total,
		Limit:   criteria.Page.Limit,
		Offset:  criteria.Page.Offset,
	}, nil
}

// Get is the lightweight read. Without a password a protected entry comes back
// redacted and no attempt is counted; with a password it is a counted view attempt.
func (s *Service) Get(ctx context.Context, userID, entryID int, password string) (Result, error) {
	if password != "" {
		return s.Verify(ctx, userID, entryID, password, protection.ActionView)
	}

	e, err := s.find(ctx, userID, entryID)
	if err != nil {
		return Result{}, err
	}

	view := Redact(*e, nil)
	if !e.IsProtected {
		return Result{Outcome: protection.Outcome{Kind: protection.OutcomeNotProtected}, Entry: &view}, nil
	}

	return Result{PasswordRequired: true, Entry: &view}, nil
}

// refused turns an uncounted ErrPasswordRequired from the gate into a redacted result.
func (s *Service) refused(ctx context.Context, userID, entryID int, err error) (Result, error) {
	if !errors.Is(err, ErrPasswordRequired) {
		return Result{}, err
	}

	e, err := s.find(ctx, userID, entryID)
	if err != nil {
		return Result{}, err
	}

	view := Redact(*e, nil)
	return Result{PasswordRequired: true, Entry: &view}, nil
}

// Verify is the canonical counted attempt.
func (s *Service) Verify(ctx context.Context, userID, entryID int, password string, action protection.Action) (Result, error) {
	out, err := s.gate.Authorize(ctx, protection.Request{
		UserID:   userID,
		EntryID:  entryID,
		Password: password,
		Action:   action,
	})
	if err != nil {
		return s.refused(ctx, userID, entryID, err)
	}

	res := Result{Outcome: out}
	if !out.Granted() || out.Effect == protection.EffectDeleted {
		return res, nil
	}

	e, err := s.find(ctx, userID, entryID)
	if err != nil {
		return Result{}, err
	}

	view := Redact(*e, protection.NewVerifiedSet(entryID))
	res.Entry = &view
	return res, nil
}

// Update re-verifies the password before changing the content of a protected entry.
func (s *Service) Update(ctx context.Context, userID, entryID int, in Input, password string) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	out, err := s.gate.Authorize(ctx, protection.Request{
		UserID:   userID,
		EntryID:  entryID,
		Password: password,
		Action:   protection.ActionEdit,
	})
	if err != nil {
		return s.refused(ctx, userID, entryID, err)
	}
	if !out.Granted() {
		return Result{Outcome: out}, nil
	}

	e, err := s.find(ctx, userID, entryID)
	if err != nil {
		return Result{}, err
	}

	in.apply(e)
	e.Version = out.Credential.Version

	if err := s.repo.UpdateContent(ctx, e); err != nil {
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrNotFound) {
			return Result{}, err
		}
		s.log.Error("failed to update entry", "entry_id", entryID, "user_id", userID, "error", err)
		return Result{}, fmt.Errorf("update entry: %w", err)
	}

	s.log.Info("entry updated", "entry_id", entryID, "user_id", userID, "version", e.Version)

	view := Redact(*e, protection.NewVerifiedSet(entryID))
	return Result{Outcome: out, Entry: &view}, nil
}

// Protect seals an entry or changes its password; the latter requires the current one.
func (s *Service) Protect(ctx context.Context, userID, entryID int, newPassword, currentPassword string) (Result, error) {
	out, err := s.gate.Seal(ctx, protection.Request{
		UserID:   userID,
		EntryID:  entryID,
		Password: currentPassword,
	}, newPassword)
	if err != nil {
		return s.refused(ctx, userID, entryID, err)
	}

	return s.afterEdit(ctx, userID, entryID, out)
}

// Unprotect removes the protection. Only possible while the entry is unlocked.
func (s *Service) Unprotect(ctx context.Context, userID, entryID int, currentPassword string) (Result, error) {
	out, err := s.gate.Unseal(ctx, protection.Request{
		UserID:   userID,
		EntryID:  entryID,
		Password: currentPassword,
	})
	if err != nil {
		return s.refused(ctx, userID, entryID, err)
	}

	return s.afterEdit(ctx, userID, entryID, out)
}

// Delete verifies and deletes in one step.
func (s *Service) Delete(ctx context.Context, userID, entryID int, password string) (Result, error) {
	out, err := s.gate.Authorize(ctx, protection.Request{
		UserID:   userID,
		EntryID:  entryID,
		Password: password,
		Action:   protection.ActionDelete,
	})
	if err != nil {
		return s.refused(ctx, userID, entryID, err)
	}

	if out.Effect == protection.EffectDeleted {
		s.log.Info("entry deleted", "entry_id", entryID, "user_id", userID, "outcome", out.Kind.String())
	}

	return Result{Outcome: out}, nil
}

func (s *Service) afterEdit(ctx context.Context, userID, entryID int, out protection.Outcome) (Result, error) {
	res := Result{Outcome: out}
	if !out.Granted() {
		return res, nil
	}

	e, err := s.find(ctx, userID, entryID)
	if err != nil {
		return Result{}, err
	}

	view := Redact(*e, protection.NewVerifiedSet(entryID))
	res.Entry = &view
	return res, nil
}

func (s *Service) find(ctx context.Context, userID, entryID int) (*Entry, error) {
	e, err := s.repo.Get(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return nil, err
		}
		s.log.Error("failed to get entry", "entry_id", entryID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// Stats aggregates over redacted views, so protected entries only add to the counters.
type Stats struct {
	TotalEntries     int            `json:"total_entries"`
	ProtectedEntries int            `json:"protected_entries"`
	AverageMood      *float64       `json:"average_mood"`
	MoodSamples      int            `json:"mood_samples"`
	Tags             map[string]int `json:"tags"`
	FirstEntryAt     *time.Time     `json:"first_entry_at,omitempty"`
	LastEntryAt      *time.Time     `json:"last_entry_at,omitempty"`
}

func (s *Service) Stats(ctx context.Context, userID int) (Stats, error) {
	entries, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		s.log.Error("failed to load entries for stats", "user_id", userID, "error", err)
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	return computeStats(RedactAll(entries, nil)), nil
}

func computeStats(views []View) Stats {
	st := Stats{
		TotalEntries: len(views),
		Tags:         make(map[string]int),
	}

	moodSum := 0
	for i := range views {
		v := &views[i]
		if v.IsProtected {
			st.ProtectedEntries++
		}
		if v.Mood != nil {
			moodSum += *v.Mood
			st.MoodSamples++
		}
		for _, tag := range v.Tags {
			st.Tags[tag]++
		}
		if st.FirstEntryAt == nil || v.CreatedAt.Before(*st.FirstEntryAt) {
			st.FirstEntryAt = &v.CreatedAt
		}
		if st.LastEntryAt == nil || v.CreatedAt.After(*st.LastEntryAt) {
			st.LastEntryAt = &v.CreatedAt
		}
	}

	if st.MoodSamples > 0 {
		avg := float64(moodSum) / float64(st.MoodSamples)
		st.AverageMood = &avg
	}

	return st
}
