// ABOUTME: SQLite-backed store for pages, forms, and form submissions.
// ABOUTME: Provides upsert, get, list, and delete operations; JSON columns hold blocks and rich text.
package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite content store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// execer is satisfied by *sql.DB and *sql.Tx so upserts can run inside a
// seed transaction or on their own.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates a SQLite content database at the given path and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS pages (
			page_id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			blocks TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS forms (
			form_id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			submit_label TEXT NOT NULL,
			fields TEXT NOT NULL,
			confirmation TEXT,
			confirmation_heading TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS submissions (
			submission_id TEXT PRIMARY KEY,
			form_slug TEXT NOT NULL,
			data TEXT NOT NULL,
			confirmation_html TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (form_slug) REFERENCES forms(slug)
		);

		CREATE INDEX IF NOT EXISTS submissions_by_form ON submissions(form_slug, created_at);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the SQLite database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertPage inserts or replaces the page with the same slug. A new page gets
// a fresh ULID; an existing page keeps its ID. p.ID and p.UpdatedAt are set
// from the stored row.
func (s *Store) UpsertPage(ctx context.Context, p *Page) error {
	return upsertPage(ctx, s.db, p)
}

func upsertPage(ctx context.Context, db execer, p *Page) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid page: %w", err)
	}
	if p.ID == "" {
		p.ID = NewULID().String()
	}
	blocks := p.Blocks
	if blocks == nil {
		blocks = []Block{}
	}
	blocksJSON, err := json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("marshal blocks: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = db.ExecContext(ctx,
		`INSERT INTO pages (page_id, slug, title, description, blocks, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			blocks = excluded.blocks,
			updated_at = excluded.updated_at`,
		p.ID, p.Slug, p.Title, p.Description, string(blocksJSON), p.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}

	if err := db.QueryRowContext(ctx, "SELECT page_id FROM pages WHERE slug = ?", p.Slug).Scan(&p.ID); err != nil {
		return fmt.Errorf("read page id: %w", err)
	}
	return nil
}

// GetPage returns the page with the given slug, or ErrNotFound.
func (s *Store) GetPage(ctx context.Context, slug string) (*Page, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT page_id, slug, title, description, blocks, updated_at FROM pages WHERE slug = ?", slug)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("page %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

// ListPages returns all pages ordered by slug.
func (s *Store) ListPages(ctx context.Context) ([]*Page, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT page_id, slug, title, description, blocks, updated_at FROM pages ORDER BY slug ASC")
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pages []*Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page row: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// DeletePage removes a page by slug. Deleting a missing page returns ErrNotFound.
func (s *Store) DeletePage(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("page %q: %w", slug, ErrNotFound)
	}
	return nil
}

// UpsertForm inserts or replaces the form with the same slug.
func (s *Store) UpsertForm(ctx context.Context, f *Form) error {
	return upsertForm(ctx, s.db, f)
}

func upsertForm(ctx context.Context, db execer, f *Form) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	if f.ID == "" {
		f.ID = NewULID().String()
	}
	fields := f.Fields
	if fields == nil {
		fields = []Field{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	var confirmation *string
	if len(f.Confirmation) > 0 {
		c := string(f.Confirmation)
		confirmation = &c
	}
	f.UpdatedAt = time.Now().UTC()

	_, err = db.ExecContext(ctx,
		`INSERT INTO forms (form_id, slug, title, submit_label, fields, confirmation, confirmation_heading, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			submit_label = excluded.submit_label,
			fields = excluded.fields,
			confirmation = excluded.confirmation,
			confirmation_heading = excluded.confirmation_heading,
			updated_at = excluded.updated_at`,
		f.ID, f.Slug, f.Title, f.SubmitLabel, string(fieldsJSON), confirmation,
		f.ConfirmationHeading, f.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert form: %w", err)
	}

	if err := db.QueryRowContext(ctx, "SELECT form_id FROM forms WHERE slug = ?", f.Slug).Scan(&f.ID); err != nil {
		return fmt.Errorf("read form id: %w", err)
	}
	return nil
}

// GetForm returns the form with the given slug, or ErrNotFound.
func (s *Store) GetForm(ctx context.Context, slug string) (*Form, error) {
	var (
		f            Form
		fieldsJSON   string
		confirmation sql.NullString
		updatedAt    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT form_id, slug, title, submit_label, fields, confirmation, confirmation_heading, updated_at
		 FROM forms WHERE slug = ?`, slug).
		Scan(&f.ID, &f.Slug, &f.Title, &f.SubmitLabel, &fieldsJSON, &confirmation, &f.ConfirmationHeading, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("form %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get form: %w", err)
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &f.Fields); err != nil {
		return nil, fmt.Errorf("decode form fields: %w", err)
	}
	if confirmation.Valid {
		f.Confirmation = json.RawMessage(confirmation.String)
	}
	if f.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse form updated_at: %w", err)
	}
	return &f, nil
}

// CreateSubmission stores a new submission for an existing form. sub.ID and
// sub.CreatedAt are assigned here.
func (s *Store) CreateSubmission(ctx context.Context, sub *Submission) error {
	if sub.FormSlug == "" {
		return errors.New("submission form must not be empty")
	}
	if _, err := s.GetForm(ctx, sub.FormSlug); err != nil {
		return err
	}
	data := sub.Data
	if data == nil {
		data = map[string]string{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal submission data: %w", err)
	}
	sub.ID = NewSubmissionID()
	sub.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (submission_id, form_slug, data, confirmation_html, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sub.ID, sub.FormSlug, string(dataJSON), sub.ConfirmationHTML, sub.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetSubmission returns a stored submission by ID, or ErrNotFound.
func (s *Store) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT submission_id, form_slug, data, confirmation_html, created_at
		 FROM submissions WHERE submission_id = ?`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns a form's submissions, oldest first.
func (s *Store) ListSubmissions(ctx context.Context, formSlug string) ([]*Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT submission_id, form_slug, data, confirmation_html, created_at
		 FROM submissions WHERE form_slug = ? ORDER BY created_at ASC, rowid ASC`, formSlug)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*Page, error) {
	var (
		p          Page
		blocksJSON string
		updatedAt  string
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &blocksJSON, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blocksJSON), &p.Blocks); err != nil {
		return nil, fmt.Errorf("decode blocks for %q: %w", p.Slug, err)
	}
	t, err := time.Parse(timeLayout, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for %q: %w", p.Slug, err)
	}
	p.UpdatedAt = t
	return &p, nil
}

func scanSubmission(row scanner) (*Submission, error) {
	var (
		sub       Submission
		dataJSON  string
		createdAt string
	)
	if err := row.Scan(&sub.ID, &sub.FormSlug, &dataJSON, &sub.ConfirmationHTML, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dataJSON), &sub.Data); err != nil {
		return nil, fmt.Errorf("decode submission data: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	sub.CreatedAt = t
	return &sub, nil
}
