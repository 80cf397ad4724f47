// Package adapter publishes viewer actions to downstream systems.
//
// The viewer fires actions (save, forward, open overview, ...) toward its
// chrome layer. When an adapter is configured, each action is also
// published so other processes can react to it.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pithecene-io/lightbox/metrics"
	"github.com/pithecene-io/lightbox/types"
)

// EventType is the event_type of every published action.
const EventType = "viewer_action"

// ActionPublishedEvent is the payload published for one viewer action.
type ActionPublishedEvent struct {
	ContractVersion string             `json:"contract_version"`
	EventType       string             `json:"event_type"`
	SessionID       string             `json:"session_id"`
	Action          types.Action       `json:"action"`
	Scope           string             `json:"scope"`
	Item            types.MediaItemRef `json:"item"`
	Delta           int                `json:"delta,omitempty"`
	Timestamp       string             `json:"timestamp"`
}

// NewEvent builds the published form of ev.
func NewEvent(sessionID string, ev types.ActionEvent, at time.Time) *ActionPublishedEvent {
	return &ActionPublishedEvent{
		ContractVersion: types.Version,
		EventType:       EventType,
		SessionID:       sessionID,
		Action:          ev.Action,
		Scope:           ev.Scope.Key(),
		Item:            ev.Item,
		Delta:           ev.Delta,
		Timestamp:       at.UTC().Format(time.RFC3339Nano),
	}
}

// Adapter publishes action events to a downstream system.
type Adapter interface {
	// Publish sends one event. Must respect context cancellation and
	// deadlines.
	Publish(ctx context.Context, event *ActionPublishedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Retry calls fn up to 1+retries times with exponential backoff starting at
// base. Errors wrapped with Permanent stop the loop immediately.
func Retry(ctx context.Context, name string, retries int, base time.Duration, fn func(ctx context.Context) error) error {
	var lastErr error
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return fmt.Errorf("%s: non-retriable error: %w", name, perm.err)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}

// Instrumented wraps an Adapter and records publish metrics.
type Instrumented struct {
	inner     Adapter
	collector *metrics.Collector
}

// NewInstrumented wraps inner with metrics instrumentation.
func NewInstrumented(inner Adapter, collector *metrics.Collector) *Instrumented {
	return &Instrumented{inner: inner, collector: collector}
}

// Publish delegates to the inner adapter and records success or failure.
func (a *Instrumented) Publish(ctx context.Context, event *ActionPublishedEvent) error {
	err := a.inner.Publish(ctx, event)
	if err != nil {
		a.collector.IncPublishFailure()
	} else {
		a.collector.IncPublishSuccess()
	}
	return err
}

// Close delegates to the inner adapter.
func (a *Instrumented) Close() error {
	return a.inner.Close()
}

var _ Adapter = (*Instrumented)(nil)
