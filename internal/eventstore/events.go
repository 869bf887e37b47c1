package eventstore

import (
	"encoding/json"
	"time"
)

// BuildStarted is the payload of TypeBuildStarted.
type BuildStarted struct {
	ConfigPath string   `json:"config_path"`
	Pages      []string `json:"pages"`
	Trigger    string   `json:"trigger,omitempty"` // cli, watch, schedule
}

// PageRendered is the payload of TypePageRendered.
type PageRendered struct {
	Slug        string `json:"slug"`
	Output      string `json:"output"`
	Bytes       int    `json:"bytes"`
	Fingerprint string `json:"fingerprint"`
	DurationMS  int64  `json:"duration_ms"`
}

// PageFailed is the payload of TypePageFailed.
type PageFailed struct {
	Slug  string `json:"slug"`
	Error string `json:"error"`
}

// BuildFinished is the payload of TypeBuildCompleted and TypeBuildFailed.
type BuildFinished struct {
	Pages      int    `json:"pages"`
	Failed     int    `json:"failed"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// NewEvent marshals payload into an event of the given type.
func NewEvent(buildID, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, wrap(ErrMarshalPayloadFailed, err)
	}
	return Event{
		BuildID:   buildID,
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   data,
	}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}
