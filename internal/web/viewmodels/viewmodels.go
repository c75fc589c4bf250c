package viewmodels

import (
	"html/template"
	"maps"
	"slices"
	"time"

	"benchshare/internal/access"
	"benchshare/internal/models"
	"benchshare/internal/prep"
)

// TestPage is everything the test page template renders.
type TestPage struct {
	Page       models.Page
	Revisions  []models.Revision
	Comments   []models.Comment
	Prep       prep.Result
	Access     access.Decision
	Info       template.HTML
	PageInit   bool
	Authorized bool

	// Errors holds a message per invalid comment field.
	Errors map[string]string
	// Form holds the submitted comment values for redisplay.
	Form map[string]string
}

// Clone returns a copy that shares no slices or maps with m.
func (m *TestPage) Clone() *TestPage {
	c := *m
	c.Revisions = slices.Clone(m.Revisions)
	c.Comments = slices.Clone(m.Comments)
	c.Errors = maps.Clone(m.Errors)
	c.Form = maps.Clone(m.Form)
	return &c
}

// HighlightedPrep returns the highlighted init markup for the template.
func (m *TestPage) HighlightedPrep() template.HTML {
	return template.HTML(m.Prep.HighlightedMarkup)
}

// Feed is the model of a page's Atom feed.
type Feed struct {
	Page         models.Page
	Revisions    []models.Revision
	LastModified time.Time
}

// Diff is the model of the revision comparison page.
type Diff struct {
	Page       models.Page
	From       models.Revision
	To         models.Revision
	Content    template.HTML
	Authorized bool
}

// Form is the model of simple forms (login, register, create).
type Form struct {
	Values     map[string]string
	Errors     map[string]string
	Authorized bool
}
