package models

import "time"

// Page is one revision of a shared test case. Revisions of the same test share a slug.
type Page struct {
	ID        int64
	Slug      string
	Revision  int
	Title     string
	Info      string
	InitHTML  string
	Setup     []string
	Teardown  []string
	Tests     []TestCase
	Published bool
	OwnerID   int64
	Hits      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TestCase is a single snippet of code under test.
type TestCase struct {
	Title string
	Code  string
	Async bool
}

// Visibility returns "published" or "unpublished".
func (p Page) Visibility() string {
	if p.Published {
		return "published"
	}
	return "unpublished"
}

// URL returns the canonical path of the page.
func (p Page) URL() string {
	return RevisionURL(p.Slug, p.Revision)
}
