package site

import (
	"time"

	"git.home.luguber.info/inful/makesite/internal/metrics"
)

// PageResult describes one page of a build.
type PageResult struct {
	Slug        string
	Output      string
	Bytes       int
	Fingerprint string
	Duration    time.Duration
	Err         error
}

// Report summarises a build.
type Report struct {
	BuildID     string
	Commit      string
	StaticFiles int
	Pages       []PageResult
	Duration    time.Duration
	Failed      int
	Outcome     metrics.BuildOutcomeLabel
}

// Slugs lists the pages built without error, in build order.
func (r *Report) Slugs() []string {
	var out []string
	for _, p := range r.Pages {
		if p.Err == nil {
			out = append(out, p.Slug)
		}
	}
	return out
}

// FailedSlugs lists the pages that failed, in build order.
func (r *Report) FailedSlugs() []string {
	var out []string
	for _, p := range r.Pages {
		if p.Err != nil {
			out = append(out, p.Slug)
		}
	}
	return out
}

func (r *Report) outcome(canceled bool) metrics.BuildOutcomeLabel {
	switch {
	case canceled:
		return metrics.BuildOutcomeCanceled
	case r.Failed == 0:
		return metrics.BuildOutcomeSuccess
	case r.Failed < len(r.Pages):
		return metrics.BuildOutcomePartial
	default:
		return metrics.BuildOutcomeFailed
	}
}
