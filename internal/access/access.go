// Package access decides what a viewer may see and do on a test page.
package access

import (
	"benchshare/internal/models"
	"benchshare/internal/session"
)

// Decision is the result of evaluating a page for one viewer.
type Decision struct {
	IsOwn   bool
	IsAdmin bool
	// NoIndex asks crawlers to skip an unpublished page shown to its owner or an admin.
	NoIndex bool
	// CanSeeUnpublished gates the publish action.
	CanSeeUnpublished bool
}

// Evaluate computes the Decision for page as seen by the session st.
func Evaluate(page models.Page, st session.State) Decision {
	d := Decision{
		IsOwn:   st.Own[page.ID],
		IsAdmin: st.Admin,
	}
	d.CanSeeUnpublished = d.IsOwn || d.IsAdmin
	d.NoIndex = !page.Published && d.CanSeeUnpublished
	return d
}

// CanPublish reports whether the viewer may publish the revision.
func (d Decision) CanPublish() bool {
	return d.CanSeeUnpublished
}

// CanView reports whether the viewer may see the revision in restricted
// listings such as diffs.
func (d Decision) CanView(page models.Page) bool {
	return page.Published || d.CanSeeUnpublished
}
