package comment

import (
	"context"
	"database/sql"
	"time"

	"benchshare/internal/models"
)

// Repository provides access to the comment storage.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new comment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Create inserts a comment for pageID. The row is written in one statement,
// so it either exists completely or not at all.
func (r *Repository) Create(ctx context.Context, pageID int64, remoteAddr string, in Input) (models.Comment, error) {
	c := models.Comment{
		PageID:      pageID,
		Author:      in.Author,
		AuthorEmail: in.AuthorEmail,
		AuthorURL:   in.AuthorURL,
		Content:     in.Content,
		IP:          remoteAddr,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (page_id, author, author_email, author_url, content, ip, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.PageID, c.Author, c.AuthorEmail, c.AuthorURL, c.Content, c.IP, c.CreatedAt)
	if err != nil {
		return models.Comment{}, err
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}
