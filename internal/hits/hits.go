// Package hits counts page views once per session.
package hits

import (
	"context"
	"sync"

	"benchshare/internal/logging"
	"benchshare/internal/metrics"
	"benchshare/internal/session"

	"go.uber.org/zap"
)

// Counter persists page view counts.
type Counter interface {
	UpdateHits(ctx context.Context, pageID int64) error
}

// Tracker increments a page's view counter the first time a session sees it.
//
// Updates run in the background and never fail the request that caused them.
// Two first views racing in one session can both count; that is accepted.
type Tracker struct {
	Pages    Counter
	Sessions session.Store
	Logger   *zap.Logger

	wg sync.WaitGroup
}

// NewTracker creates a new Tracker.
func NewTracker(pages Counter, sessions session.Store, logger *zap.Logger) *Tracker {
	return &Tracker{Pages: pages, Sessions: sessions, Logger: logging.OrNop(logger)}
}

// RecordView schedules the view count update and returns immediately. The
// update outlives ctx's cancellation so a disconnecting client still counts.
func (t *Tracker) RecordView(ctx context.Context, sessionID string, pageID int64) {
	ctx = context.WithoutCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.record(ctx, sessionID, pageID); err != nil {
			metrics.HitUpdates.WithLabelValues("failed").Inc()
			t.Logger.Warn("view count update failed",
				zap.Int64("page_id", pageID),
				zap.Error(err))
		}
	}()
}

func (t *Tracker) record(ctx context.Context, sessionID string, pageID int64) error {
	seen := map[int64]bool{}
	if err := t.Sessions.Get(ctx, sessionID, session.ValueHits, &seen); err != nil {
		return err
	}
	if seen == nil {
		seen = map[int64]bool{}
	}
	if seen[pageID] {
		metrics.HitUpdates.WithLabelValues("skipped").Inc()
		return nil
	}

	if err := t.Pages.UpdateHits(ctx, pageID); err != nil {
		return err
	}
	seen[pageID] = true
	if err := t.Sessions.Set(ctx, sessionID, session.ValueHits, seen); err != nil {
		return err
	}
	metrics.HitUpdates.WithLabelValues("counted").Inc()
	return nil
}

// Wait blocks until every scheduled update has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
