package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pithecene-io/lightbox/log"
	"github.com/pithecene-io/lightbox/overview"
)

// Serve answers fetch frames read from r with page frames written to w
// until r ends or ctx is cancelled. Each fetch runs on its own goroutine,
// so pages may be written out of request order.
//
// A clean end of input returns nil.
func Serve(ctx context.Context, r io.Reader, w io.Writer, fetcher overview.Fetcher, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dec := NewFrameDecoder(r)
	enc := NewFrameEncoder(w)

	var (
		writeMu sync.Mutex
		wg      sync.WaitGroup
	)
	defer wg.Wait()

	for {
		payload, err := dec.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		frame, err := DecodeFrame(payload)
		if err != nil {
			logger.Warn("dropping undecodable frame", map[string]any{"error": err.Error()})
			continue
		}
		fetch, ok := frame.(*FetchFrame)
		if !ok {
			logger.Warn("dropping unexpected frame", map[string]any{"type": fmt.Sprintf("%T", frame)})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			out := &PageFrame{Type: PageType, ID: fetch.ID}
			page, err := fetcher.Fetch(ctx, fetch.Request())
			if err != nil {
				out.Error = err.Error()
				logger.Warn("fetch failed", map[string]any{
					"scope":     fetch.Scope.String(),
					"direction": fetch.Direction.String(),
					"error":     err.Error(),
				})
			} else {
				out.Items = page.Items
				out.HasMore = page.HasMore
			}

			writeMu.Lock()
			defer writeMu.Unlock()
			if err := enc.WriteFrame(out); err != nil {
				logger.Error("failed to write page", map[string]any{"id": fetch.ID, "error": err.Error()})
				cancel()
			}
		}()
	}
}
