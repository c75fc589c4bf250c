package page

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"benchshare/internal/apperr"
	"benchshare/internal/models"
)

// Record is everything the page view needs for one revision, fetched as a unit.
type Record struct {
	Page     models.Page
	Revision models.Revision
	Comments []models.Comment
}

// Repository provides access to the page storage.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new page repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

const pageColumns = "id, slug, revision, title, info, init_html, setup, teardown, published, owner_id, hits, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (models.Page, error) {
	var p models.Page
	var setup, teardown string
	err := row.Scan(&p.ID, &p.Slug, &p.Revision, &p.Title, &p.Info, &p.InitHTML, &setup, &teardown,
		&p.Published, &p.OwnerID, &p.Hits, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Page{}, err
	}
	if err := json.Unmarshal([]byte(setup), &p.Setup); err != nil {
		return models.Page{}, fmt.Errorf("decode setup of page %d: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(teardown), &p.Teardown); err != nil {
		return models.Page{}, fmt.Errorf("decode teardown of page %d: %w", p.ID, err)
	}
	return p, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	return err
}

// GetBySlug loads a revision of a page with its tests and comments.
func (r *Repository) GetBySlug(ctx context.Context, slug string, revision int) (Record, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+pageColumns+" FROM pages WHERE slug = ? AND revision = ?", slug, revision)
	p, err := scanPage(row)
	if err != nil {
		return Record{}, notFound(err)
	}

	p.Tests, err = r.listTests(ctx, p.ID)
	if err != nil {
		return Record{}, err
	}

	comments, err := r.listComments(ctx, p.ID)
	if err != nil {
		return Record{}, err
	}

	return Record{Page: p, Revision: revisionOf(p), Comments: comments}, nil
}

// GetVisibleBySlugWithRevisions returns the published first revision of a
// page and every published revision of its slug.
func (r *Repository) GetVisibleBySlugWithRevisions(ctx context.Context, slug string) (models.Page, []models.Revision, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+pageColumns+" FROM pages WHERE slug = ? AND revision = 1 AND published = 1", slug)
	p, err := scanPage(row)
	if err != nil {
		return models.Page{}, nil, notFound(err)
	}

	revisions, err := r.ListRevisions(ctx, slug, true)
	if err != nil {
		return models.Page{}, nil, err
	}
	if len(revisions) == 0 {
		return models.Page{}, nil, apperr.ErrNotFound
	}
	return p, revisions, nil
}

// ListRevisions lists the revisions of a slug in ascending order.
func (r *Repository) ListRevisions(ctx context.Context, slug string, publishedOnly bool) ([]models.Revision, error) {
	query := "SELECT id, revision, title, published, created_at, updated_at FROM pages WHERE slug = ?"
	if publishedOnly {
		query += " AND published = 1"
	}
	rows, err := r.DB.QueryContext(ctx, query+" ORDER BY revision ASC", slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []models.Revision
	for rows.Next() {
		var rev models.Revision
		if err := rows.Scan(&rev.PageID, &rev.Number, &rev.Title, &rev.Published, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

// UpdateHits increments the view counter of a page.
func (r *Repository) UpdateHits(ctx context.Context, pageID int64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE pages SET hits = hits + 1 WHERE id = ?", pageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Publish makes a page revision publicly visible.
func (r *Repository) Publish(ctx context.Context, pageID int64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE pages SET published = 1, updated_at = ? WHERE id = ?", time.Now().UTC(), pageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Create stores page as the next revision of its slug, with its tests, in a
// transaction. page.ID, page.Revision and the timestamps are filled in.
func (r *Repository) Create(ctx context.Context, page *models.Page) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var last int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(revision), 0) FROM pages WHERE slug = ?", page.Slug).Scan(&last); err != nil {
		return fmt.Errorf("error finding last revision: %w", err)
	}

	setup, err := json.Marshal(nonNil(page.Setup))
	if err != nil {
		return err
	}
	teardown, err := json.Marshal(nonNil(page.Teardown))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO pages (slug, revision, title, info, init_html, setup, teardown, published, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		page.Slug, last+1, page.Title, page.Info, page.InitHTML, string(setup), string(teardown), page.Published, page.OwnerID, now, now)
	if err != nil {
		return fmt.Errorf("error creating page: %w", err)
	}
	pageID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, tc := range page.Tests {
		_, err := tx.ExecContext(ctx, "INSERT INTO tests (page_id, position, title, code, async) VALUES (?, ?, ?, ?, ?)", pageID, i, tc.Title, tc.Code, tc.Async)
		if err != nil {
			return fmt.Errorf("error creating test: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	page.ID = pageID
	page.Revision = last + 1
	page.CreatedAt = now
	page.UpdatedAt = now
	return nil
}

func (r *Repository) listTests(ctx context.Context, pageID int64) ([]models.TestCase, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT title, code, async FROM tests WHERE page_id = ? ORDER BY position ASC", pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []models.TestCase
	for rows.Next() {
		var tc models.TestCase
		if err := rows.Scan(&tc.Title, &tc.Code, &tc.Async); err != nil {
			return nil, err
		}
		tests = append(tests, tc)
	}
	return tests, rows.Err()
}

func (r *Repository) listComments(ctx context.Context, pageID int64) ([]models.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, page_id, author, author_email, author_url, content, ip, created_at FROM comments WHERE page_id = ? ORDER BY created_at ASC, id ASC", pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PageID, &c.Author, &c.AuthorEmail, &c.AuthorURL, &c.Content, &c.IP, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func revisionOf(p models.Page) models.Revision {
	return models.Revision{
		PageID:    p.ID,
		Number:    p.Revision,
		Title:     p.Title,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
