// Package playback sends register logs to a running YM2151 playback server
package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/james-see/ym2151tone/pkg/converter"
)

// ErrServerNotRunning is returned when the playback pipe does not exist
var ErrServerNotRunning = errors.New("playback server not running")

// Sender delivers a register log to a sound source
type Sender interface {
	Send(ctx context.Context, log converter.Log) error
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(ctx context.Context, log converter.Log) error

// Send calls f
func (f SenderFunc) Send(ctx context.Context, log converter.Log) error {
	return f(ctx, log)
}

// PipeSender writes each log as one line of JSON to a named pipe
type PipeSender struct {
	Path string

	mu sync.Mutex
}

// NewPipeSender creates a sender for the pipe at path
func NewPipeSender(path string) *PipeSender {
	return &PipeSender{Path: path}
}

// Encode renders log as a single JSON line
func Encode(log converter.Log) ([]byte, error) {
	data, err := json.Marshal(converter.ToLogJSON(log))
	if err != nil {
		return nil, fmt.Errorf("failed to encode log: %w", err)
	}
	return append(data, '\n'), nil
}

// Send writes the log. The pipe is opened without blocking, so a FIFO with
// no reader fails at once with ErrServerNotRunning and a full pipe waits at
// most until ctx is done.
func (p *PipeSender) Send(ctx context.Context, log converter.Log) error {
	line, err := Encode(log)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(p.Path, os.O_WRONLY|os.O_APPEND|syscall.O_NONBLOCK, 0)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENXIO) {
			return fmt.Errorf("%w: %s", ErrServerNotRunning, p.Path)
		}
		return fmt.Errorf("failed to open %s: %w", p.Path, err)
	}
	defer f.Close()

	// regular files have no deadline support; they never block anyway
	if deadline, ok := ctx.Deadline(); ok {
		_ = f.SetWriteDeadline(deadline)
	}
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.Path, err)
	}
	return nil
}
