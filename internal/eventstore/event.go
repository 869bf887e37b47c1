package eventstore

import "time"

// Event types appended by the site builder.
const (
	TypeBuildStarted   = "build_started"
	TypePageRendered   = "page_rendered"
	TypePageFailed     = "page_failed"
	TypeBuildCompleted = "build_completed"
	TypeBuildFailed    = "build_failed"
)

// Event is one stored history record. Payload is JSON.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}
