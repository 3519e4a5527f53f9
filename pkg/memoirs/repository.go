package memoirs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/unowned-ai/memoirs/pkg/media"
)

var (
	ErrNotFound = errors.New("memoir not found")
)

// Repository is the durable side of the store.
type Repository interface {
	Insert(ctx context.Context, m Memoir) error
	Update(ctx context.Context, id string, p Patch) error
	Upsert(ctx context.Context, m Memoir) error
	Delete(ctx context.Context, id string) error
	SelectAll(ctx context.Context) ([]Memoir, error)
}

// memoirColumns is the column list for every SELECT. Order must match scan.
const memoirColumns = `id, title, content, date, created_at, updated_at, media, bookmark, title_visible`

const (
	insertMemoirStatement = `
	INSERT INTO memoirs (id, title, content, date, created_at, updated_at, media, bookmark, title_visible)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	upsertMemoirStatement = `
	INSERT INTO memoirs (id, title, content, date, created_at, updated_at, media, bookmark, title_visible)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		content = excluded.content,
		date = excluded.date,
		updated_at = excluded.updated_at,
		media = excluded.media,
		bookmark = excluded.bookmark,
		title_visible = excluded.title_visible
	`

	deleteMemoirStatement = `
	DELETE FROM memoirs
	WHERE id = ?
	`

	getMemoirStatement = `
	SELECT ` + memoirColumns + `
	FROM memoirs
	WHERE id = ?
	`

	listMemoirsStatement = `
	SELECT ` + memoirColumns + `
	FROM memoirs
	ORDER BY COALESCE(date, created_at) DESC, created_at DESC
	`
)

// SQLiteRepository stores memoirs in the memoirs table. Media lists are kept
// as a JSON column.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) Insert(ctx context.Context, m Memoir) error {
	mediaJSON, err := encodeMedia(m.Media)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(
		ctx,
		insertMemoirStatement,
		m.ID,
		m.Title,
		m.Content,
		m.Date,
		m.CreatedAt,
		m.UpdatedAt,
		mediaJSON,
		m.Bookmark,
		m.TitleVisible,
	)
	if err != nil {
		return fmt.Errorf("insert memoir %s: %w", m.ID, err)
	}
	return nil
}

// Update writes only the fields set in p.
func (r *SQLiteRepository) Update(ctx context.Context, id string, p Patch) error {
	var sets []string
	var args []any

	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *p.Content)
	}
	if p.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *p.Date)
	}
	if p.UpdatedAt != nil {
		sets = append(sets, "updated_at = ?")
		args = append(args, *p.UpdatedAt)
	}
	if p.Media != nil {
		mediaJSON, err := encodeMedia(*p.Media)
		if err != nil {
			return err
		}
		sets = append(sets, "media = ?")
		args = append(args, mediaJSON)
	}
	if p.Bookmark != nil {
		sets = append(sets, "bookmark = ?")
		args = append(args, *p.Bookmark)
	}
	if p.TitleVisible != nil {
		sets = append(sets, "title_visible = ?")
		args = append(args, *p.TitleVisible)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE memoirs SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update memoir %s: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("update memoir %s: %w", id, ErrNotFound)
	}
	return nil
}

// Upsert replaces every mutable field of m, inserting the row if needed.
func (r *SQLiteRepository) Upsert(ctx context.Context, m Memoir) error {
	mediaJSON, err := encodeMedia(m.Media)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(
		ctx,
		upsertMemoirStatement,
		m.ID,
		m.Title,
		m.Content,
		m.Date,
		m.CreatedAt,
		m.UpdatedAt,
		mediaJSON,
		m.Bookmark,
		m.TitleVisible,
	)
	if err != nil {
		return fmt.Errorf("upsert memoir %s: %w", m.ID, err)
	}
	return nil
}

// Delete removes the row. Deleting a row that is already gone succeeds.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteMemoirStatement, id); err != nil {
		return fmt.Errorf("delete memoir %s: %w", id, err)
	}
	return nil
}

// Get reads a single row.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (Memoir, error) {
	m, err := scanMemoir(r.db.QueryRowContext(ctx, getMemoirStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Memoir{}, ErrNotFound
		}
		return Memoir{}, err
	}
	return m, nil
}

func (r *SQLiteRepository) SelectAll(ctx context.Context) ([]Memoir, error) {
	rows, err := r.db.QueryContext(ctx, listMemoirsStatement)
	if err != nil {
		return nil, fmt.Errorf("select memoirs: %w", err)
	}
	defer rows.Close()

	var out []Memoir
	for rows.Next() {
		m, err := scanMemoir(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memoir rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMemoir(row scanner) (Memoir, error) {
	var m Memoir
	var mediaJSON string

	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Content,
		&m.Date,
		&m.CreatedAt,
		&m.UpdatedAt,
		&mediaJSON,
		&m.Bookmark,
		&m.TitleVisible,
	)
	if err != nil {
		return Memoir{}, err
	}

	m.Media, err = decodeMedia(mediaJSON)
	if err != nil {
		return Memoir{}, fmt.Errorf("memoir %s: %w", m.ID, err)
	}
	return m, nil
}

func encodeMedia(list []media.Asset) (string, error) {
	if list == nil {
		list = []media.Asset{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode media: %w", err)
	}
	return string(b), nil
}

func decodeMedia(s string) ([]media.Asset, error) {
	out := []media.Asset{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}
	if out == nil {
		out = []media.Asset{}
	}
	return out, nil
}
