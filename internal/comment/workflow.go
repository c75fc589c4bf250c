// Package comment validates and stores visitor comments on test pages.
package comment

import (
	"context"
	"errors"
	"maps"
	"net/http"

	"benchshare/internal/apperr"
	"benchshare/internal/logging"
	"benchshare/internal/metrics"
	"benchshare/internal/models"
	"benchshare/internal/web/viewmodels"

	"go.uber.org/zap"
)

// Store persists comments.
type Store interface {
	Create(ctx context.Context, pageID int64, remoteAddr string, in Input) (models.Comment, error)
}

// Kind tells the caller how to answer a submission.
type Kind int

const (
	// Redisplay shows the form again with field errors. Not an error response.
	Redisplay Kind = iota
	// Created shows the page with the new comment appended.
	Created
	// Rejected shows the form again after the store failed.
	Rejected
)

func (k Kind) String() string {
	switch k {
	case Redisplay:
		return "redisplay"
	case Created:
		return "created"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Outcome is the result of Submit.
type Outcome struct {
	Kind    Kind
	Model   *viewmodels.TestPage
	Comment *models.Comment
	// Err is a *apperr.ValidationError for Redisplay and a
	// *apperr.PersistenceError for Rejected.
	Err error
}

// Status is the HTTP status the outcome is rendered with.
func (o Outcome) Status() int {
	if o.Kind == Rejected {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// Workflow runs comment submissions.
type Workflow struct {
	Store  Store
	Logger *zap.Logger
}

// NewWorkflow creates a new Workflow.
func NewWorkflow(store Store, logger *zap.Logger) *Workflow {
	return &Workflow{Store: store, Logger: logging.OrNop(logger)}
}

// Submit validates raw, stores the comment and returns the model to render.
// model is never modified.
func (w *Workflow) Submit(ctx context.Context, model *viewmodels.TestPage, remoteAddr string, raw map[string]string) Outcome {
	out := w.submit(ctx, model, remoteAddr, raw)
	metrics.CommentSubmissions.WithLabelValues(out.Kind.String()).Inc()
	return out
}

func (w *Workflow) submit(ctx context.Context, model *viewmodels.TestPage, remoteAddr string, raw map[string]string) Outcome {
	in := InputFromForm(raw)
	if err := in.Validate(); err != nil {
		var verr *apperr.ValidationError
		if !errors.As(err, &verr) {
			verr = &apperr.ValidationError{Fields: map[string]string{}}
		}
		m := withForm(model, raw)
		if m.Errors == nil {
			m.Errors = map[string]string{}
		}
		maps.Copy(m.Errors, verr.Fields)
		return Outcome{Kind: Redisplay, Model: m, Err: verr}
	}

	c, err := w.Store.Create(ctx, model.Page.ID, remoteAddr, in)
	if err != nil {
		w.Logger.Error("comment create failed",
			zap.Int64("page_id", model.Page.ID),
			zap.Error(err))
		return Outcome{Kind: Rejected, Model: withForm(model, raw), Err: &apperr.PersistenceError{Err: err}}
	}

	m := model.Clone()
	m.Comments = append(m.Comments, c)
	m.Errors = nil
	m.Form = nil
	return Outcome{Kind: Created, Model: m, Comment: &c}
}

func withForm(model *viewmodels.TestPage, raw map[string]string) *viewmodels.TestPage {
	m := model.Clone()
	if m.Form == nil {
		m.Form = map[string]string{}
	}
	maps.Copy(m.Form, raw)
	return m
}
