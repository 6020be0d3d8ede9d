package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"mydiary/internal/domain/entry"
	"mydiary/internal/domain/protection"
)

const entryColumns = `id, user_id, title, body, tags, attachments, mood, created_at, updated_at, version,
		       is_protected, password_hash, failed_attempts, lockout_until`

var _ entry.Repository = (*EntryRepository)(nil)

type EntryRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewEntryRepository(db *Storage, log *slog.Logger) *EntryRepository {
	return &EntryRepository{
		db:  db,
		log: log.With("component", "entry_repository"),
	}
}

func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) (int, error) {
	const query = `
		INSERT INTO entries (user_id, title, body, tags, attachments, mood, is_protected, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version, created_at, updated_at`

	err := r.db.Pool().QueryRow(ctx, query,
		e.UserID, e.Title, e.Body, nonNil(e.Tags), nonNil(e.Attachments), e.Mood, e.IsProtected, e.PasswordHash,
	).Scan(&e.ID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}

	return e.ID, nil
}

func (r *EntryRepository) Get(ctx context.Context, userID, entryID int) (*entry.Entry, error) {
	row := r.db.Pool().QueryRow(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1`, entryID)

	e, err := scanEntry(row)
	if err != nil {
		if isNoRows(err) {
			return nil, entry.ErrNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	if e.UserID != userID {
		return nil, entry.ErrForbidden
	}

	return e, nil
}

func (r *EntryRepository) List(ctx context.Context, userID int, page entry.Page) ([]entry.Entry, int, error) {
	var total int
	if err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM entries WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	rows, err := r.db.Pool().Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *EntryRepository) ListAll(ctx context.Context, userID int) ([]entry.Entry, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list all entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Search never matches text or mood of protected entries, only their dates.
func (r *EntryRepository) Search(ctx context.Context, userID int, c entry.Criteria) ([]entry.Entry, int, error) {
	where := ` WHERE user_id = $1`
	args := []interface{}{userID}
	argIndex := 2

	if c.Query != "" {
		where += fmt.Sprintf(` AND NOT is_protected
			AND (title ILIKE $%[1]d OR body ILIKE $%[1]d OR array_to_string(tags, ' ') ILIKE $%[1]d)`, argIndex)
		args = append(args, "%"+escapeLike(c.Query)+"%")
		argIndex++
	}

	if c.MoodMin != nil {
		where += fmt.Sprintf(" AND NOT is_protected AND mood >= $%d", argIndex)
		args = append(args, *c.MoodMin)
		argIndex++
	}

	if c.MoodMax != nil {
		where += fmt.Sprintf(" AND NOT is_protected AND mood <= $%d", argIndex)
		args = append(args, *c.MoodMax)
		argIndex++
	}

	if c.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *c.From)
		argIndex++
	}

	if c.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *c.To)
		argIndex++
	}

	var total int
	if err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM entries`+where, args...).Scan(&total); err != nil {
		r.log.Error("failed to count search results", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	query := `SELECT ` + entryColumns + ` FROM entries` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, c.Page.Limit, c.Page.Offset)

	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to search entries", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *EntryRepository) UpdateContent(ctx context.Context, e *entry.Entry) error {
	const query = `
		UPDATE entries
		SET title = $1, body = $2, tags = $3, attachments = $4, mood = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = $6 AND user_id = $7 AND version = $8
		RETURNING version, updated_at`

	err := r.db.Pool().QueryRow(ctx, query,
		e.Title, e.Body, nonNil(e.Tags), nonNil(e.Attachments), e.Mood,
		e.ID, e.UserID, e.Version,
	).Scan(&e.Version, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return r.missOrConflict(ctx, r.db.Pool(), e.ID)
		}
		return fmt.Errorf("update entry: %w", err)
	}

	return nil
}

func (r *EntryRepository) LoadCredential(ctx context.Context, userID, entryID int) (protection.Credential, error) {
	cred := protection.Credential{EntryID: entryID}
	err := r.db.Pool().QueryRow(ctx, `
		SELECT user_id, is_protected, password_hash, failed_attempts, lockout_until, version
		FROM entries WHERE id = $1`, entryID,
	).Scan(&cred.UserID, &cred.IsProtected, &cred.PasswordHash, &cred.FailedAttempts, &cred.LockoutUntil, &cred.Version)
	if err != nil {
		if isNoRows(err) {
			return protection.Credential{}, protection.ErrNotFound
		}
		return protection.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	if cred.UserID != userID {
		return protection.Credential{}, protection.ErrForbidden
	}

	return cred, nil
}

func (r *EntryRepository) SaveCredential(ctx context.Context, cred protection.Credential) (protection.Credential, error) {
	if err := cred.Validate(); err != nil {
		return protection.Credential{}, err
	}

	err := r.db.Pool().QueryRow(ctx, `
		UPDATE entries
		SET is_protected = $1, password_hash = $2, failed_attempts = $3, lockout_until = $4,
		    version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version`,
		cred.IsProtected, cred.PasswordHash, cred.FailedAttempts, cred.LockoutUntil,
		cred.EntryID, cred.Version,
	).Scan(&cred.Version)
	if err != nil {
		if isNoRows(err) {
			return protection.Credential{}, r.missOrConflict(ctx, r.db.Pool(), cred.EntryID)
		}
		return protection.Credential{}, fmt.Errorf("save credential: %w", err)
	}

	return cred, nil
}

// DeleteVerified records the successful verification and removes the entry in one transaction.
func (r *EntryRepository) DeleteVerified(ctx context.Context, cred protection.Credential) error {
	return pgx.BeginFunc(ctx, r.db.Pool(), func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE entries
			SET failed_attempts = 0, lockout_until = NULL, version = version + 1
			WHERE id = $1 AND version = $2`,
			cred.EntryID, cred.Version)
		if err != nil {
			return fmt.Errorf("record verification: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return r.missOrConflict(ctx, tx, cred.EntryID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM entries WHERE id = $1`, cred.EntryID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}

		return nil
	})
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *EntryRepository) missOrConflict(ctx context.Context, q querier, entryID int) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM entries WHERE id = $1)`, entryID).Scan(&exists); err != nil {
		return fmt.Errorf("check entry: %w", err)
	}
	if !exists {
		return entry.ErrNotFound
	}
	return entry.ErrVersionConflict
}

func scanEntries(rows pgx.Rows) ([]entry.Entry, error) {
	entries := make([]entry.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*entry.Entry, error) {
	var e entry.Entry
	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Body, &e.Tags, &e.Attachments, &e.Mood,
		&e.CreatedAt, &e.UpdatedAt, &e.Version,
		&e.IsProtected, &e.PasswordHash, &e.FailedAttempts, &e.LockoutUntil,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
