package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pithecene-io/lightbox/log"
	"github.com/pithecene-io/lightbox/metrics"
	"github.com/pithecene-io/lightbox/overview"
)

// ErrClosed is returned by Fetch once the stream has ended.
var ErrClosed = errors.New("ipc: stream closed")

// RemoteError is a fetch failure reported by the peer.
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string {
	return "remote fetch failed: " + e.Msg
}

type reply struct {
	frame *PageFrame
	err   error
}

// Client issues fetches over a frame stream and matches page frames back
// to callers by wire id. Fetch is safe for concurrent use.
type Client struct {
	enc     *FrameEncoder
	dec     *FrameDecoder
	log     *log.Logger
	metrics *metrics.Collector

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan reply
	err     error

	done chan struct{}
}

// NewClient starts a client reading page frames from r and writing fetch
// frames to w. logger and collector may be nil.
func NewClient(r io.Reader, w io.Writer, logger *log.Logger, collector *metrics.Collector) *Client {
	c := &Client{
		enc:     NewFrameEncoder(w),
		dec:     NewFrameDecoder(r),
		log:     logger,
		metrics: collector,
		pending: make(map[uint64]chan reply),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Done is closed when the read side of the stream ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the stream, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Fetch implements overview.Fetcher. The pager's request id is not sent;
// each call gets its own wire id.
func (c *Client) Fetch(ctx context.Context, req overview.Request) (overview.Page, error) {
	ch := make(chan reply, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return overview.Page{}, err
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.enc.WriteFrame(NewFetchFrame(id, req))
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return overview.Page{}, err
	}

	select {
	case r := <-ch:
		if r.err != nil {
			return overview.Page{}, r.err
		}
		if r.frame.Error != "" {
			return overview.Page{}, &RemoteError{Msg: r.frame.Error}
		}
		return r.frame.Page(), nil
	case <-ctx.Done():
		c.forget(id)
		return overview.Page{}, ctx.Err()
	}
}

func (c *Client) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		payload, err := c.dec.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrClosed
			}
			c.shutdown(err)
			return
		}

		frame, err := DecodeFrame(payload)
		if err != nil {
			c.metrics.IncIPCDecodeErrors()
			c.log.Warn("dropping undecodable frame", map[string]any{"error": err.Error()})
			continue
		}
		page, ok := frame.(*PageFrame)
		if !ok {
			c.metrics.IncIPCDecodeErrors()
			c.log.Warn("dropping unexpected frame", map[string]any{"type": fmt.Sprintf("%T", frame)})
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[page.ID]
		delete(c.pending, page.ID)
		c.mu.Unlock()
		if !ok {
			c.log.Debug("page for unknown fetch", map[string]any{"id": page.ID})
			continue
		}
		ch <- reply{frame: page}
	}
}

func (c *Client) shutdown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	for id, ch := range c.pending {
		ch <- reply{err: err}
		delete(c.pending, id)
	}
}
