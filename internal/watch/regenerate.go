package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Regenerator turns the current spec into client code.
type Regenerator interface {
	Regenerate(ctx context.Context) error
}

// RegeneratorFunc adapts a function to Regenerator.
type RegeneratorFunc func(ctx context.Context) error

// Regenerate calls f.
func (f RegeneratorFunc) Regenerate(ctx context.Context) error { return f(ctx) }

// CommandOptions configures a CommandRegenerator.
type CommandOptions struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Timeout kills the command after the given duration; zero means none.
	Timeout time.Duration
	// Out receives the command's stdout and stderr verbatim.
	Out io.Writer
	Logger *slog.Logger
}

// CommandRegenerator runs a shell command line, e.g. "npm run orval".
type CommandRegenerator struct {
	command string
	opts    CommandOptions
}

// NewCommandRegenerator validates command and returns a regenerator for it.
func NewCommandRegenerator(command string, opts CommandOptions) (*CommandRegenerator, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("regeneration command is empty")
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &CommandRegenerator{command: command, opts: opts}, nil
}

// Command returns the command line.
func (r *CommandRegenerator) Command() string { return r.command }

// Regenerate runs the command to completion. Captured output is written to
// Out once the command exits, stderr first. A failed start or non-zero exit
// returns a *RegenerationError.
func (r *CommandRegenerator) Regenerate(ctx context.Context) error {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)

		defer cancel()
	}

	r.opts.Logger.Info("executing command", slog.String("command", r.command), slog.String("dir", r.opts.Dir))

	var stdout, stderr bytes.Buffer

	cmd := shellCommand(ctx, r.command)
	cmd.Dir = r.opts.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Backstop for descendants that left the process group.
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	runErr := cmd.Run()

	if stderr.Len() > 0 {
		_, _ = fmt.Fprintf(r.opts.Out, "command stderr:\n%s", ensureNewline(stderr.Bytes()))
	}

	if stdout.Len() > 0 {
		_, _ = fmt.Fprintf(r.opts.Out, "command stdout:\n%s", ensureNewline(stdout.Bytes()))
	}

	if runErr != nil {
		return r.wrapError(ctx, runErr)
	}

	r.opts.Logger.Info("command finished",
		slog.String("command", r.command),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)

	return nil
}

func (r *CommandRegenerator) wrapError(ctx context.Context, err error) error {
	regenErr := &RegenerationError{Command: r.command, ExitCode: -1, Err: err}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		regenErr.Err = fmt.Errorf("timed out after %s: %w", r.opts.Timeout, err)
		return regenErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		regenErr.ExitCode = exitErr.ExitCode()
	}

	return regenErr
}

func ensureNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] != '\n' {
		return append(b, '\n')
	}

	return b
}
