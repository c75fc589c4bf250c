// Package testpage assembles the view models of a test page and its feed.
package testpage

import (
	"context"
	"html/template"
	"regexp"

	"benchshare/internal/access"
	"benchshare/internal/apperr"
	"benchshare/internal/metrics"
	"benchshare/internal/models"
	"benchshare/internal/page"
	"benchshare/internal/prep"
	"benchshare/internal/session"
	"benchshare/internal/web/viewmodels"
)

// Store is the page storage the builders read from.
type Store interface {
	GetBySlug(ctx context.Context, slug string, revision int) (page.Record, error)
	GetVisibleBySlugWithRevisions(ctx context.Context, slug string) (models.Page, []models.Revision, error)
	ListRevisions(ctx context.Context, slug string, publishedOnly bool) ([]models.Revision, error)
}

// ViewRecorder counts a page view for a session without blocking.
type ViewRecorder interface {
	RecordView(ctx context.Context, sessionID string, pageID int64)
}

// InfoRenderer turns a page description into HTML.
type InfoRenderer interface {
	Render(content string) (template.HTML, error)
}

// entryPoint matches an init function the benchmark runner calls before tests.
var entryPoint = regexp.MustCompile(`function\s+init\s*\(`)

// Builder builds test page models. The view, comment, publish and diff
// routes all go through Build so they agree on prep and access state.
type Builder struct {
	Pages Store
	Prep  *prep.Assembler
	Hits  ViewRecorder
	Info  InfoRenderer
}

// Build fetches revision rev of slug (1 when rev is 0) and assembles its model
// for the viewer st. Missing pages yield apperr.ErrNotFound.
func (b *Builder) Build(ctx context.Context, slug string, rev int, st session.State) (*viewmodels.TestPage, error) {
	if rev == 0 {
		rev = 1
	}
	rec, err := b.Pages.GetBySlug(ctx, slug, rev)
	if err != nil {
		return nil, apperr.Upstream("get page", err)
	}

	prepared, err := b.Prep.Assemble(rec.Page.InitHTML, rec.Page.Setup, rec.Page.Teardown)
	if err != nil {
		return nil, apperr.Upstream("assemble prep", err)
	}

	if st.ID != "" {
		b.Hits.RecordView(ctx, st.ID, rec.Page.ID)
	}

	info, err := b.Info.Render(rec.Page.Info)
	if err != nil {
		return nil, apperr.Upstream("render info", err)
	}

	revisions, err := b.Pages.ListRevisions(ctx, slug, false)
	if err != nil {
		return nil, apperr.Upstream("list revisions", err)
	}
	decision := access.Evaluate(rec.Page, st)
	visible := revisions[:0]
	for _, r := range revisions {
		if r.Published || r.PageID == rec.Page.ID || decision.IsAdmin || st.Own[r.PageID] {
			visible = append(visible, r)
		}
	}

	metrics.PageViews.Inc()
	return &viewmodels.TestPage{
		Page:       rec.Page,
		Revisions:  visible,
		Comments:   rec.Comments,
		Prep:       prepared,
		Access:     decision,
		Info:       info,
		PageInit:   entryPoint.MatchString(rec.Page.InitHTML),
		Authorized: st.Authenticated(),
	}, nil
}
