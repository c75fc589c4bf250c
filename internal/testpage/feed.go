package testpage

import (
	"context"

	"benchshare/internal/apperr"
	"benchshare/internal/web/viewmodels"
)

// Feed builds the Atom feed model of slug from its published revisions.
func (b *Builder) Feed(ctx context.Context, slug string) (*viewmodels.Feed, error) {
	p, revisions, err := b.Pages.GetVisibleBySlugWithRevisions(ctx, slug)
	if err != nil {
		return nil, apperr.Upstream("get visible page", err)
	}
	if len(revisions) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &viewmodels.Feed{
		Page:         p,
		Revisions:    revisions,
		LastModified: p.UpdatedAt,
	}, nil
}
