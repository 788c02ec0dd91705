// Package library stores the scripture catalog and published app
// releases in SQLite.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a scripture or release does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalid indicates a record failed validation
	ErrInvalid = errors.New("invalid input")
)

const schema = `
CREATE TABLE IF NOT EXISTS scriptures (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL,
	audio_url   TEXT NOT NULL DEFAULT '',
	cover_image TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS releases (
	build        INTEGER PRIMARY KEY,
	version      TEXT NOT NULL,
	download_url TEXT NOT NULL,
	notes        TEXT NOT NULL DEFAULT '',
	digest       TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL
);
`

// descriptionRunes is how much content becomes the default description.
const descriptionRunes = 50

// Scripture is one work in the library.
type Scripture struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	AudioURL    string    `json:"audio_url,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is the SQLite-backed library.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate library: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func validate(sc Scripture) error {
	if strings.TrimSpace(sc.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if strings.TrimSpace(sc.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalid)
	}
	return nil
}

// Summarize returns the first 50 characters of content followed by "...".
func Summarize(content string) string {
	if utf8.RuneCountInString(content) <= descriptionRunes {
		return content
	}
	return string([]rune(content)[:descriptionRunes]) + "..."
}

// Add inserts sc, replacing any scripture with the same ID. A new ID is
// generated when sc.ID is empty and the description defaults to a
// summary of the content.
func (s *Store) Add(ctx context.Context, sc Scripture) (Scripture, error) {
	if err := validate(sc); err != nil {
		return Scripture{}, err
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.Description == "" {
		sc.Description = Summarize(sc.Content)
	}
	now := s.now().UTC()
	sc.CreatedAt, sc.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scriptures (id, title, author, description, content, audio_url, cover_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			description = excluded.description,
			content = excluded.content,
			audio_url = excluded.audio_url,
			cover_image = excluded.cover_image,
			updated_at = excluded.updated_at`,
		sc.ID, sc.Title, sc.Author, sc.Description, sc.Content, sc.AudioURL, sc.CoverImage,
		formatTime(now), formatTime(now))
	if err != nil {
		return Scripture{}, fmt.Errorf("failed to add scripture: %w", err)
	}
	return s.Get(ctx, sc.ID)
}

// Update overwrites an existing scripture.
func (s *Store) Update(ctx context.Context, sc Scripture) (Scripture, error) {
	if err := validate(sc); err != nil {
		return Scripture{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE scriptures SET title = ?, author = ?, description = ?, content = ?,
			audio_url = ?, cover_image = ?, updated_at = ?
		WHERE id = ?`,
		sc.Title, sc.Author, sc.Description, sc.Content, sc.AudioURL, sc.CoverImage,
		formatTime(s.now().UTC()), sc.ID)
	if err != nil {
		return Scripture{}, fmt.Errorf("failed to update scripture: %w", err)
	}
	if err := expectRow(res, sc.ID); err != nil {
		return Scripture{}, err
	}
	return s.Get(ctx, sc.ID)
}

// Remove deletes a scripture.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scriptures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove scripture: %w", err)
	}
	return expectRow(res, id)
}

// Get returns one scripture.
func (s *Store) Get(ctx context.Context, id string) (Scripture, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, author, description, content, audio_url, cover_image, created_at, updated_at
		FROM scriptures WHERE id = ?`, id)
	sc, err := scanScripture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Scripture{}, fmt.Errorf("scripture %s: %w", id, ErrNotFound)
	}
	return sc, err
}

// List returns every scripture, oldest first.
func (s *Store) List(ctx context.Context) ([]Scripture, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, description, content, audio_url, cover_image, created_at, updated_at
		FROM scriptures ORDER BY created_at, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scriptures: %w", err)
	}
	defer rows.Close()

	var out []Scripture
	for rows.Next() {
		sc, err := scanScripture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScripture(row scanner) (Scripture, error) {
	var sc Scripture
	var created, updated string
	err := row.Scan(&sc.ID, &sc.Title, &sc.Author, &sc.Description, &sc.Content,
		&sc.AudioURL, &sc.CoverImage, &created, &updated)
	if err != nil {
		return Scripture{}, err
	}
	if sc.CreatedAt, err = parseTime(created); err != nil {
		return Scripture{}, err
	}
	if sc.UpdatedAt, err = parseTime(updated); err != nil {
		return Scripture{}, err
	}
	return sc, nil
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// Fixed-width so that text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
