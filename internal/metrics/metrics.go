// Package metrics defines the prometheus collectors of the site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageViews counts rendered test pages.
	PageViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "benchshare_page_views_total",
		Help: "Number of rendered test pages.",
	})

	// HitUpdates counts view counter updates by result (counted, skipped, failed).
	HitUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "benchshare_hit_updates_total",
		Help: "Per-session view counter updates by result.",
	}, []string{"result"})

	// CommentSubmissions counts comment submissions by outcome.
	CommentSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "benchshare_comment_submissions_total",
		Help: "Comment submissions by outcome.",
	}, []string{"outcome"})
)
