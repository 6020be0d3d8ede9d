package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mydiary/internal/domain/entry"
	"mydiary/internal/domain/protection"
)

const entryColumns = `id, user_id, title, body, tags, attachments, mood, created_at, updated_at, version,
	is_protected, password_hash, failed_attempts, lockout_until`

var _ entry.Repository = (*EntryRepository)(nil)

type EntryRepository struct {
	db *Storage
}

func NewEntryRepository(db *Storage) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) (int, error) {
	tags, attachments, err := encodeLists(e)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	res, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO entries (user_id, title, body, tags, attachments, mood, created_at, updated_at,
		                     is_protected, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Title, e.Body, tags, attachments, e.Mood, now, now, e.IsProtected, e.PasswordHash)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("entry id: %w", err)
	}

	e.ID = int(id)
	e.Version = 1
	e.CreatedAt = now
	e.UpdatedAt = now
	return e.ID, nil
}

func (r *EntryRepository) Get(ctx context.Context, userID, entryID int) (*entry.Entry, error) {
	row := r.db.DB().QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, entryID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, userID, page.Limit, page.Offset)
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
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list all entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (r *EntryRepository) Search(ctx context.Context, userID int, c entry.Criteria) ([]entry.Entry, int, error) {
	var b strings.Builder
	b.WriteString(` WHERE user_id = ?`)
	args := []interface{}{userID}

	if c.Query != "" {
		b.WriteString(` AND is_protected = 0 AND (title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(c.Query) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if c.MoodMin != nil {
		b.WriteString(` AND is_protected = 0 AND mood >= ?`)
		args = append(args, *c.MoodMin)
	}
	if c.MoodMax != nil {
		b.WriteString(` AND is_protected = 0 AND mood <= ?`)
		args = append(args, *c.MoodMax)
	}
	if c.From != nil {
		b.WriteString(` AND created_at >= ?`)
		args = append(args, c.From.UTC())
	}
	if c.To != nil {
		b.WriteString(` AND created_at <= ?`)
		args = append(args, c.To.UTC())
	}
	where := b.String()

	var total int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count search results: %w", err)
	}

	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, c.Page.Limit, c.Page.Offset)...)
	if err != nil {
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
	tags, attachments, err := encodeLists(e)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return r.db.withTx(ctx, func(tx dbtx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE entries
			SET title = ?, body = ?, tags = ?, attachments = ?, mood = ?,
			    version = version + 1, updated_at = ?
			WHERE id = ? AND user_id = ? AND version = ?`,
			e.Title, e.Body, tags, attachments, e.Mood, now, e.ID, e.UserID, e.Version)
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return missOrConflict(ctx, tx, e.ID)
		}

		e.Version++
		e.UpdatedAt = now
		return nil
	})
}

func (r *EntryRepository) LoadCredential(ctx context.Context, userID, entryID int) (protection.Credential, error) {
	cred := protection.Credential{EntryID: entryID}
	var lockout sql.NullTime

	err := r.db.DB().QueryRowContext(ctx, `
		SELECT user_id, is_protected, password_hash, failed_attempts, lockout_until, version
		FROM entries WHERE id = ?`, entryID,
	).Scan(&cred.UserID, &cred.IsProtected, &cred.PasswordHash, &cred.FailedAttempts, &lockout, &cred.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return protection.Credential{}, protection.ErrNotFound
		}
		return protection.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	if cred.UserID != userID {
		return protection.Credential{}, protection.ErrForbidden
	}

	if lockout.Valid {
		t := lockout.Time.UTC()
		cred.LockoutUntil = &t
	}
	return cred, nil
}

func (r *EntryRepository) SaveCredential(ctx context.Context, cred protection.Credential) (protection.Credential, error) {
	if err := cred.Validate(); err != nil {
		return protection.Credential{}, err
	}

	err := r.db.withTx(ctx, func(tx dbtx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE entries
			SET is_protected = ?, password_hash = ?, failed_attempts = ?, lockout_until = ?,
			    version = version + 1
			WHERE id = ? AND version = ?`,
			cred.IsProtected, cred.PasswordHash, cred.FailedAttempts, nullTime(cred.LockoutUntil),
			cred.EntryID, cred.Version)
		if err != nil {
			return fmt.Errorf("save credential: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return missOrConflict(ctx, tx, cred.EntryID)
		}
		return nil
	})
	if err != nil {
		return protection.Credential{}, err
	}

	cred.Version++
	return cred, nil
}

func (r *EntryRepository) DeleteVerified(ctx context.Context, cred protection.Credential) error {
	return r.db.withTx(ctx, func(tx dbtx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE entries SET failed_attempts = 0, lockout_until = NULL, version = version + 1
			WHERE id = ? AND version = ?`, cred.EntryID, cred.Version)
		if err != nil {
			return fmt.Errorf("record verification: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return missOrConflict(ctx, tx, cred.EntryID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, cred.EntryID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return nil
	})
}

func missOrConflict(ctx context.Context, q dbtx, entryID int) error {
	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM entries WHERE id = ?)`, entryID).Scan(&exists); err != nil {
		return fmt.Errorf("check entry: %w", err)
	}
	if !exists {
		return entry.ErrNotFound
	}
	return entry.ErrVersionConflict
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntries(rows *sql.Rows) ([]entry.Entry, error) {
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

func scanEntry(row scanner) (*entry.Entry, error) {
	var (
		e                 entry.Entry
		tags, attachments string
		mood              sql.NullInt64
		lockout           sql.NullTime
	)

	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Body, &tags, &attachments, &mood,
		&e.CreatedAt, &e.UpdatedAt, &e.Version,
		&e.IsProtected, &e.PasswordHash, &e.FailedAttempts, &lockout,
	)
	if err != nil {
		return nil, err
	}

	// Парсим списки
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("parse tags: %w", err)
	}
	if err := json.Unmarshal([]byte(attachments), &e.Attachments); err != nil {
		return nil, fmt.Errorf("parse attachments: %w", err)
	}

	if mood.Valid {
		m := int(mood.Int64)
		e.Mood = &m
	}
	if lockout.Valid {
		t := lockout.Time.UTC()
		e.LockoutUntil = &t
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()

	return &e, nil
}

func encodeLists(e *entry.Entry) (string, string, error) {
	tags, err := json.Marshal(nonNil(e.Tags))
	if err != nil {
		return "", "", fmt.Errorf("ошибка сериализации тегов: %w", err)
	}
	attachments, err := json.Marshal(nonNil(e.Attachments))
	if err != nil {
		return "", "", fmt.Errorf("ошибка сериализации вложений: %w", err)
	}
	return string(tags), string(attachments), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
