package policy

import (
	"context"

	"github.com/pithecene-io/lightbox/adapter"
)

// Strict publishes every action immediately.
//
//   - No buffering: each action is published before Publish returns
//   - No drops
//   - Backpressure: caller blocks on adapter latency
type Strict struct {
	inner adapter.Adapter
	stats *statsRecorder
}

// NewStrict creates a strict policy publishing to inner.
func NewStrict(inner adapter.Adapter) *Strict {
	return &Strict{inner: inner, stats: newStatsRecorder()}
}

// Publish forwards the event to the adapter.
func (p *Strict) Publish(ctx context.Context, event *adapter.ActionPublishedEvent) error {
	p.stats.incTotal()
	if err := p.inner.Publish(ctx, event); err != nil {
		p.stats.incErrors()
		return err
	}
	p.stats.incPublished()
	return nil
}

// Flush is a no-op for strict policy (nothing is buffered).
func (p *Strict) Flush(_ context.Context) error {
	p.stats.incFlush()
	return nil
}

// Close closes the underlying adapter.
func (p *Strict) Close() error {
	return p.inner.Close()
}

// Stats returns policy statistics.
func (p *Strict) Stats() Stats {
	return p.stats.snapshot()
}
