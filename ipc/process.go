package ipc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"

	"github.com/pithecene-io/lightbox/iox"
	"github.com/pithecene-io/lightbox/log"
	"github.com/pithecene-io/lightbox/metrics"
	"github.com/pithecene-io/lightbox/overview"
)

// ProcessResult is the outcome of a catalog process.
type ProcessResult struct {
	// ExitCode is the process exit code.
	ExitCode int
	// Stderr is the captured stderr output.
	Stderr []byte
}

// Process runs a catalog command that speaks the frame protocol on its
// stdin and stdout, and fetches pages from it.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	client *Client

	stderrMu sync.Mutex
	stderr   bytes.Buffer
	stderrWG sync.WaitGroup
}

// StartProcess starts argv[0] with the remaining arguments.
func StartProcess(ctx context.Context, argv []string, logger *log.Logger, collector *metrics.Collector) (*Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("catalog command is empty")
	}

	p := &Process{cmd: exec.CommandContext(ctx, argv[0], argv[1:]...)}

	stdin, err := p.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	p.stdin = stdin

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start catalog: %w", err)
	}

	p.stderrWG.Add(1)
	go func() {
		defer p.stderrWG.Done()
		buf := make([]byte, 4096)
		for {
			n, err := stderr.Read(buf)
			if n > 0 {
				p.stderrMu.Lock()
				p.stderr.Write(buf[:n])
				p.stderrMu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()

	p.client = NewClient(stdout, stdin, logger, collector)
	return p, nil
}

// Fetch implements overview.Fetcher.
func (p *Process) Fetch(ctx context.Context, req overview.Request) (overview.Page, error) {
	return p.client.Fetch(ctx, req)
}

// Stderr returns the stderr captured so far.
func (p *Process) Stderr() []byte {
	p.stderrMu.Lock()
	defer p.stderrMu.Unlock()
	return bytes.Clone(p.stderr.Bytes())
}

// Close ends the request stream and waits for the process to exit.
func (p *Process) Close() (*ProcessResult, error) {
	iox.DiscardClose(p.stdin)
	<-p.client.Done()
	p.stderrWG.Wait()

	err := p.cmd.Wait()
	result := &ProcessResult{Stderr: p.Stderr()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("catalog wait failed: %w", err)
		}
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			result.ExitCode = status.ExitStatus()
		} else {
			result.ExitCode = -1
		}
	}
	return result, nil
}

// Kill terminates the process.
func (p *Process) Kill() error {
	if p.cmd != nil && p.cmd.Process != nil {
		return p.cmd.Process.Kill()
	}
	return nil
}
