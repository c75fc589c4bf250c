package models

import "time"

// Comment is a visitor remark attached to a page.
type Comment struct {
	ID          int64
	PageID      int64
	Author      string
	AuthorEmail string
	AuthorURL   string
	Content     string
	IP          string
	CreatedAt   time.Time
}
