package policy

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/pithecene-io/lightbox/adapter"
	"github.com/pithecene-io/lightbox/log"
)

// DefaultCloseTimeout bounds the final flush in Close.
const DefaultCloseTimeout = 5 * time.Second

// ErrBufferFull is returned when the buffer is full, nothing can be evicted
// and publishing the buffer failed.
var ErrBufferFull = errors.New("buffer full: cannot accept non-droppable action")

// ErrInvalidConfig is returned when BufferedConfig is invalid.
var ErrInvalidConfig = errors.New("invalid config: MaxEvents must be > 0")

// BufferedConfig configures a Buffered policy.
type BufferedConfig struct {
	// MaxEvents is the maximum number of actions to hold.
	MaxEvents int

	// CloseTimeout bounds the final flush in Close (default 5s).
	CloseTimeout time.Duration

	// Logger is an optional logger for policy observability.
	// If nil, no logging is emitted.
	Logger *log.Logger
}

// DefaultBufferedConfig returns sensible defaults for buffered policy.
func DefaultBufferedConfig() BufferedConfig {
	return BufferedConfig{
		MaxEvents:    64,
		CloseTimeout: DefaultCloseTimeout,
	}
}

// Buffered holds actions and publishes them in order on flush.
//
//   - Bounded buffer of MaxEvents actions
//   - May drop: navigate, dropdown, open_context_menu
//   - Flush publishes oldest first and keeps the unpublished remainder on
//     failure, so nothing already accepted is published twice
//   - Close flushes before closing the adapter
type Buffered struct {
	inner  adapter.Adapter
	config BufferedConfig
	logger *log.Logger

	mu     sync.Mutex // guards buffer and serializes flushes
	buffer []*adapter.ActionPublishedEvent
	stats  *statsRecorder
}

// NewBuffered creates a buffered policy publishing to inner.
func NewBuffered(inner adapter.Adapter, config BufferedConfig) (*Buffered, error) {
	if config.MaxEvents <= 0 {
		return nil, ErrInvalidConfig
	}
	if config.CloseTimeout <= 0 {
		config.CloseTimeout = DefaultCloseTimeout
	}
	return &Buffered{
		inner:  inner,
		config: config,
		logger: config.Logger,
		buffer: make([]*adapter.ActionPublishedEvent, 0, config.MaxEvents),
		stats:  newStatsRecorder(),
	}, nil
}

// Publish buffers the event, applying drop rules if the buffer is full.
//
// Drop strategy when full:
//   - If the incoming action is droppable: drop it
//   - Otherwise drop the oldest droppable buffered action
//   - Otherwise flush the buffer; if that fails return ErrBufferFull
func (p *Buffered) Publish(ctx context.Context, event *adapter.ActionPublishedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.incTotalLocked()

	if len(p.buffer) < p.config.MaxEvents {
		p.appendLocked(event)
		return nil
	}

	if IsDroppable(event.Action) {
		p.stats.incDroppedLocked(event.Action)
		p.logDrop(event, "buffer_full")
		return nil
	}

	if p.dropOldestDroppableLocked() {
		p.appendLocked(event)
		return nil
	}

	if err := p.flushLocked(ctx); err != nil {
		p.logger.Error("buffer overflow", map[string]any{
			"action": string(event.Action),
			"error":  err.Error(),
		})
		return errors.Join(ErrBufferFull, err)
	}
	p.appendLocked(event)
	return nil
}

func (p *Buffered) appendLocked(event *adapter.ActionPublishedEvent) {
	p.buffer = append(p.buffer, event)
	p.stats.setBufferedLocked(len(p.buffer))
}

// dropOldestDroppableLocked evicts the oldest droppable action.
// Returns false if none is buffered.
func (p *Buffered) dropOldestDroppableLocked() bool {
	i := slices.IndexFunc(p.buffer, func(e *adapter.ActionPublishedEvent) bool {
		return IsDroppable(e.Action)
	})
	if i < 0 {
		return false
	}
	evicted := p.buffer[i]
	p.buffer = slices.Delete(p.buffer, i, i+1)
	p.stats.incDroppedLocked(evicted.Action)
	p.stats.setBufferedLocked(len(p.buffer))
	p.logDrop(evicted, "evicted")
	return true
}

// Flush publishes all buffered actions oldest first.
func (p *Buffered) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(ctx)
}

func (p *Buffered) flushLocked(ctx context.Context) error {
	p.stats.incFlushLocked()
	sent := 0
	defer func() {
		p.buffer = slices.Delete(p.buffer, 0, sent)
		p.stats.incPublishedLocked(sent)
		p.stats.setBufferedLocked(len(p.buffer))
	}()

	for _, event := range p.buffer {
		if err := p.inner.Publish(ctx, event); err != nil {
			p.stats.incErrorsLocked()
			p.logger.Warn("flush failed", map[string]any{
				"action":    string(event.Action),
				"published": sent,
				"remaining": len(p.buffer) - sent,
				"error":     err.Error(),
			})
			return err
		}
		sent++
	}
	return nil
}

// Close flushes the buffer, then closes the underlying adapter.
func (p *Buffered) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.CloseTimeout)
	defer cancel()
	return errors.Join(p.Flush(ctx), p.inner.Close())
}

// Stats returns an atomic snapshot of policy statistics.
func (p *Buffered) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.snapshotLocked()
}

func (p *Buffered) logDrop(event *adapter.ActionPublishedEvent, reason string) {
	p.logger.Debug("action dropped", map[string]any{
		"action": string(event.Action),
		"reason": reason,
	})
}
