package eventstore

import (
	"time"
)

// Build statuses derived from events.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// BuildSummary is the read model of one build.
type BuildSummary struct {
	BuildID     string        `json:"build_id"`
	Status      string        `json:"status"`
	Trigger     string        `json:"trigger,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Pages       int           `json:"pages"`
	FailedPages []string      `json:"failed_pages,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Summarize folds the events of one build (oldest first) into a summary.
// Undecodable payloads are ignored.
func Summarize(events []Event) BuildSummary {
	var s BuildSummary
	s.Status = StatusRunning
	for _, e := range events {
		s.BuildID = e.BuildID
		switch e.Type {
		case TypeBuildStarted:
			s.StartedAt = e.Timestamp
			var p BuildStarted
			if e.Decode(&p) == nil {
				s.Trigger = p.Trigger
			}
		case TypePageRendered:
			s.Pages++
		case TypePageFailed:
			var p PageFailed
			if e.Decode(&p) == nil {
				s.FailedPages = append(s.FailedPages, p.Slug)
			}
		case TypeBuildCompleted, TypeBuildFailed:
			ts := e.Timestamp
			s.CompletedAt = &ts
			s.Status = StatusCompleted
			var p BuildFinished
			if e.Decode(&p) == nil {
				s.Duration = time.Duration(p.DurationMS) * time.Millisecond
				s.Error = p.Error
			}
			if e.Type == TypeBuildFailed {
				s.Status = StatusFailed
			}
		}
	}
	return s
}
