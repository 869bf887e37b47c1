package eventstore

import "context"

// Store defines persistence of build events.
type Store interface {
	// Append adds e to the store. ID and a zero Timestamp are filled in by the store.
	Append(ctx context.Context, e Event) error
	// GetByBuildID returns all events of one build, oldest first.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)
	// Recent summarises the latest builds, newest first.
	Recent(ctx context.Context, limit int) ([]BuildSummary, error)
	Close() error
}
