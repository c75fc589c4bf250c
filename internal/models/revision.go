package models

import (
	"strconv"
	"time"
)

// Revision references one immutable snapshot of a page.
type Revision struct {
	PageID    int64
	Number    int
	Title     string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// URL returns the canonical path of the revision.
func (r Revision) URL(slug string) string {
	return RevisionURL(slug, r.Number)
}

// RevisionURL builds the canonical path for a slug and revision number.
// Revision 1 lives at the bare slug.
func RevisionURL(slug string, number int) string {
	if number <= 1 {
		return "/" + slug
	}
	return "/" + slug + "/" + strconv.Itoa(number)
}
