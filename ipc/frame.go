// Package ipc implements the length-prefixed msgpack transport that carries
// page fetches between the viewer and a catalog process.
//
// Every frame is a 4-byte big-endian payload length followed by a msgpack
// map with a "type" discriminant.
package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/types"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including length prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum payload size (MaxFrameSize - 4 bytes).
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// Frame type discriminants.
const (
	FetchType = "fetch"
	PageType  = "page"
)

// FetchFrame asks the peer for one page.
type FetchFrame struct {
	Type      string          `msgpack:"type"`
	ID        uint64          `msgpack:"id"`
	Scope     types.Scope     `msgpack:"scope"`
	Direction types.Direction `msgpack:"direction"`
	Cursor    int64           `msgpack:"cursor"`
	Limit     int             `msgpack:"limit"`
}

// PageFrame answers the FetchFrame with the same ID. A non-empty Error
// means the fetch failed.
type PageFrame struct {
	Type    string               `msgpack:"type"`
	ID      uint64               `msgpack:"id"`
	Items   []types.MediaItemRef `msgpack:"items"`
	HasMore bool                 `msgpack:"has_more"`
	Error   string               `msgpack:"error,omitempty"`
}

// NewFetchFrame builds the wire form of req under wire id id.
func NewFetchFrame(id uint64, req overview.Request) *FetchFrame {
	return &FetchFrame{
		Type:      FetchType,
		ID:        id,
		Scope:     req.Scope,
		Direction: req.Direction,
		Cursor:    req.Cursor,
		Limit:     req.Limit,
	}
}

// Request converts the frame back to a pager request.
func (f *FetchFrame) Request() overview.Request {
	return overview.Request{
		ID:        f.ID,
		Scope:     f.Scope,
		Direction: f.Direction,
		Cursor:    f.Cursor,
		Limit:     f.Limit,
	}
}

// Page converts the frame to a pager page.
func (f *PageFrame) Page() overview.Page {
	return overview.Page{Items: f.Items, HasMore: f.HasMore}
}

// FrameErrorKind classifies frame decoding errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error.
	FrameErrorDecode
)

// FrameError represents a frame decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFatal returns true if the stream can no longer be read.
// Partial and oversized frames desynchronize the stream; a bad payload
// inside a well-formed frame does not.
func (e *FrameError) IsFatal() bool {
	return e.Kind == FrameErrorPartial || e.Kind == FrameErrorTooLarge
}

// IsFatalFrameError returns true if the error is a fatal frame error.
func IsFatalFrameError(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.IsFatal()
	}
	return false
}

// FrameDecoder decodes length-prefixed msgpack frames from a stream.
type FrameDecoder struct {
	reader io.Reader
}

// NewFrameDecoder creates a new frame decoder.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{reader: r}
}

// ReadFrame reads a single frame from the stream.
// Returns the raw payload bytes (msgpack-encoded).
//
// Errors:
//   - io.EOF: stream ended cleanly (no more frames)
//   - *FrameError with Kind=FrameErrorPartial: incomplete frame (fatal)
//   - *FrameError with Kind=FrameErrorTooLarge: frame exceeds limit (fatal)
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	_, err := io.ReadFull(d.reader, lengthBuf[:])
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	_, err = io.ReadFull(d.reader, payload)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}

	return payload, nil
}

// FrameEncoder writes length-prefixed msgpack frames. It is not safe for
// concurrent use.
type FrameEncoder struct {
	writer io.Writer
}

// NewFrameEncoder creates a new frame encoder.
func NewFrameEncoder(w io.Writer) *FrameEncoder {
	return &FrameEncoder{writer: w}
}

// WriteFrame encodes v and writes it as one frame.
func (e *FrameEncoder) WriteFrame(v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	if _, err := e.writer.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// frameTypeProbe is used to peek at the type field without full decode.
type frameTypeProbe struct {
	Type string `msgpack:"type"`
}

// DecodeFrame decodes a payload into a *FetchFrame or *PageFrame based on
// its type field.
func DecodeFrame(payload []byte) (any, error) {
	var probe frameTypeProbe
	if err := msgpack.Unmarshal(payload, &probe); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode frame type",
			Err:  err,
		}
	}

	switch probe.Type {
	case FetchType:
		var f FetchFrame
		if err := msgpack.Unmarshal(payload, &f); err != nil {
			return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode fetch frame", Err: err}
		}
		return &f, nil
	case PageType:
		var f PageFrame
		if err := msgpack.Unmarshal(payload, &f); err != nil {
			return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode page frame", Err: err}
		}
		return &f, nil
	default:
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("unknown frame type %q", probe.Type),
		}
	}
}
