// Package notify announces finished builds to other systems.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/makesite/internal/foundation/errors"
	"git.home.luguber.info/inful/makesite/internal/retry"
)

// BuildEvent is published once per build.
type BuildEvent struct {
	BuildID    string    `json:"build_id"`
	Status     string    `json:"status"` // success, partial, failed
	Pages      []string  `json:"pages"`
	Failed     []string  `json:"failed,omitempty"`
	OutputDir  string    `json:"output_dir"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher delivers build events.
type Publisher interface {
	Publish(ctx context.Context, e BuildEvent) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, BuildEvent) error { return nil }
func (Noop) Close() error                              { return nil }

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes JSON build events on a core NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
	retry   retry.Policy
}

// NewNATSPublisher connects to url. Failed publishes are retried with policy.
func NewNATSPublisher(url, subject string, policy retry.Policy) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("makesite"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, errors.NetworkError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS publisher connected", "url", url, "subject", subject)
	return &NATSPublisher{conn: nc, subject: subject, retry: policy}, nil
}

// Publish sends e and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, e BuildEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return errors.InternalError("failed to marshal build event").WithCause(err).Build()
	}
	if err := p.retry.Do(ctx, func(ctx context.Context) error { return p.publish(ctx, data) }); err != nil {
		return err
	}
	slog.Debug("Published build event", "build_id", e.BuildID, "subject", p.subject)
	return nil
}

func (p *NATSPublisher) publish(ctx context.Context, data []byte) error {
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.NetworkError("failed to publish build event").
			WithCause(err).
			WithContext("subject", p.subject).
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.NetworkError("failed to flush build event").
			WithCause(err).
			WithContext("subject", p.subject).
			Build()
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
