// Package iox holds cleanup helpers for closers whose errors nobody can act
// on: catalog handles, log files, page server pipes.
package iox

import "io"

// DiscardClose closes c, dropping the error.
//
//	defer iox.DiscardClose(rows)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a func that closes c, for t.Cleanup and Stack.Push.
func CloseFunc(c io.Closer) func() {
	return func() { DiscardClose(c) }
}

// DiscardErr calls fn, dropping the error. Use it for Sync, Flush and
// Rollback style calls.
func DiscardErr(fn func() error) { _ = fn() }

// Stack collects cleanups and runs them last in, first out.
// The zero value is ready to use. It is not safe for concurrent use.
type Stack struct {
	fns []func()
}

// Push registers fn.
func (s *Stack) Push(fn func()) { s.fns = append(s.fns, fn) }

// PushCloser registers c.Close with its error dropped.
func (s *Stack) PushCloser(c io.Closer) { s.Push(CloseFunc(c)) }

// Len returns the number of pending cleanups.
func (s *Stack) Len() int { return len(s.fns) }

// Run calls every pending cleanup in reverse order and empties the stack.
func (s *Stack) Run() {
	fns := s.fns
	s.fns = nil
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
