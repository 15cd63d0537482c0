// Package toolchain drives the external Zig compiler and Binaryen optimizer.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// maxCapturedOutput bounds the stdout/stderr kept in memory per command.
const maxCapturedOutput = 10 * 1024 * 1024

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	Truncated bool
}

// Runner runs external commands. A non-zero exit is reported through
// Result.ExitCode; the error return is reserved for processes that could not
// be started or were cancelled.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec. Stderr is streamed to StderrSink as
// it is produced and also captured for the result.
type ExecRunner struct {
	StderrSink io.Writer
	logger     *slog.Logger
}

// NewExecRunner creates a runner that streams tool stderr to os.Stderr.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{StderrSink: os.Stderr, logger: logger}
}

// Run executes cmd and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	//nolint:gosec // G204: tool paths come from the user's own configuration
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	stdout := NewBoundedBuffer(maxCapturedOutput)
	stderr := NewBoundedBuffer(maxCapturedOutput)
	c.Stdout = stdout
	if r.StderrSink != nil {
		c.Stderr = io.MultiWriter(stderr, r.StderrSink)
	} else {
		c.Stderr = stderr
	}

	start := time.Now()
	err := c.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  duration,
		Truncated: stdout.Truncated || stderr.Truncated,
	}

	r.logger.DebugContext(ctx, "executed command",
		"command", cmd.Name,
		"args", cmd.Args,
		"duration", duration,
		"error", err)

	if result.Truncated {
		r.logger.WarnContext(ctx, "command output truncated", "command", cmd.Name)
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, err
}

// BoundedBuffer is a bytes.Buffer wrapper that limits the size of written data.
type BoundedBuffer struct {
	buffer    bytes.Buffer
	limit     int
	Truncated bool
}

// NewBoundedBuffer creates a new BoundedBuffer with the specified limit.
func NewBoundedBuffer(limit int) *BoundedBuffer {
	return &BoundedBuffer{limit: limit}
}

// Write implements io.Writer.
func (b *BoundedBuffer) Write(p []byte) (n int, err error) {
	if b.buffer.Len() >= b.limit {
		b.Truncated = true
		return len(p), nil // Pretend we wrote it all to satisfy io.Writer contract
	}

	remaining := b.limit - b.buffer.Len()
	if len(p) > remaining {
		b.Truncated = true
		n, err = b.buffer.Write(p[:remaining])
		if err != nil {
			return n, err
		}
		return len(p), nil
	}

	return b.buffer.Write(p)
}

// String returns the buffer contents as a string.
func (b *BoundedBuffer) String() string {
	return b.buffer.String()
}
