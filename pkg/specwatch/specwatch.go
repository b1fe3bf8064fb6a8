// Package specwatch provides a public Go API for keeping a generated API
// client in sync with a backend's OpenAPI document.
//
// This package exposes the specwatch watcher as a library, allowing
// programmatic use without the CLI, for example from a dev-server harness.
//
// Basic usage:
//
//	err := specwatch.Watch(ctx, "http://localhost:8000/openapi.json")
//
// With options:
//
//	err := specwatch.Watch(ctx, "./openapi.yaml",
//	    specwatch.WithCommand("pnpm orval"),
//	    specwatch.WithInterval(2*time.Second),
//	    specwatch.WithSnapshot(".cache/openapi.json", "json"),
//	)
//
// The reactive state holders used by UI layers are re-exported here as
// well: see [NewFileState] and [NewProgressState].
package specwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/variantexplain/specwatch/internal/config"
	"github.com/variantexplain/specwatch/internal/logging"
	"github.com/variantexplain/specwatch/internal/openapi"
	"github.com/variantexplain/specwatch/internal/output"
	"github.com/variantexplain/specwatch/internal/state"
	"github.com/variantexplain/specwatch/internal/textdiff"
	"github.com/variantexplain/specwatch/internal/watch"
)

// Option configures Watch and Fetch.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	// Source.
	fetchTimeout time.Duration

	// Regeneration.
	command         string
	dir             string
	generateTimeout time.Duration
	regenerate      func(ctx context.Context) error

	// Loop.
	interval        time.Duration
	generateOnStart bool
	showDiff        bool
	notify          bool
	debounce        time.Duration

	// Snapshot.
	snapshot       string
	snapshotFormat string

	logger *slog.Logger
	out    io.Writer
}

// --- Source ---

// WithFetchTimeout bounds each fetch (default: 10s, 0 disables).
func WithFetchTimeout(d time.Duration) Option { return func(o *options) { o.fetchTimeout = d } }

// --- Regeneration ---

// WithCommand sets the regeneration shell command (default: "npm run orval").
func WithCommand(command string) Option { return func(o *options) { o.command = command } }

// WithDir sets the working directory of the regeneration command.
func WithDir(dir string) Option { return func(o *options) { o.dir = dir } }

// WithGenerateTimeout bounds each regeneration (default: none).
func WithGenerateTimeout(d time.Duration) Option { return func(o *options) { o.generateTimeout = d } }

// WithRegenerateFunc replaces the shell command with fn.
func WithRegenerateFunc(fn func(ctx context.Context) error) Option {
	return func(o *options) { o.regenerate = fn }
}

// --- Loop ---

// WithInterval sets the time between checks (default: 1s).
func WithInterval(d time.Duration) Option { return func(o *options) { o.interval = d } }

// WithGenerateOnStart also regenerates after the first successful fetch.
func WithGenerateOnStart() Option { return func(o *options) { o.generateOnStart = true } }

// WithShowDiff prints a unified diff for every detected change.
func WithShowDiff() Option { return func(o *options) { o.showDiff = true } }

// WithoutNotify disables file-system notifications for local documents.
func WithoutNotify() Option { return func(o *options) { o.notify = false } }

// WithDebounce sets the quiet period for file-system events (default: 250ms).
func WithDebounce(d time.Duration) Option { return func(o *options) { o.debounce = d } }

// --- Snapshot ---

// WithSnapshot writes every recorded document to path in format ("json" or
// "yaml").
func WithSnapshot(path, format string) Option {
	return func(o *options) {
		o.snapshot = path
		o.snapshotFormat = format
	}
}

// --- Output ---

// WithLogger sets the structured logger (default: discard).
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// WithOutput sets the writer for status lines and command output
// (default: discard).
func WithOutput(w io.Writer) Option { return func(o *options) { o.out = w } }

func newOptions(opts []Option) *options {
	d := config.Default()

	o := &options{
		fetchTimeout:   d.FetchTimeout,
		command:        d.Command,
		interval:       d.Interval,
		notify:         true,
		debounce:       d.Debounce,
		snapshotFormat: d.SnapshotFormat,
		logger:         logging.Discard(),
		out:            io.Discard,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Watch polls the document at location and regenerates the client whenever
// it changes, until ctx is cancelled. Signal handling is left to the caller.
// location is an http(s) URL, a file:// URL or a local path.
func Watch(ctx context.Context, location string, opts ...Option) error {
	o := newOptions(opts)
	out := watch.NewSyncWriter(o.out)

	src, err := watch.NewSource(location, o.fetchTimeout)
	if err != nil {
		return err
	}

	regen, err := o.regenerator(out)
	if err != nil {
		return err
	}

	var snapshot output.Writer

	if o.snapshot != "" {
		format, err := output.ParseFormat(o.snapshotFormat)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}

		snapshot = output.NewFileWriter(o.snapshot, output.WithFormat(format), output.WithLogger(o.logger))
	}

	w := watch.New(src, regen, watch.Options{
		Interval:        o.interval,
		GenerateOnStart: o.generateOnStart,
		ShowDiff:        o.showDiff,
		Notify:          o.notify,
		Debounce:        o.debounce,
		Snapshot:        snapshot,
		Logger:          o.logger,
		Out:             out,
	})

	if err := w.Run(ctx); err != nil {
		return err
	}

	w.Wait()

	return nil
}

func (o *options) regenerator(out io.Writer) (watch.Regenerator, error) {
	if o.regenerate != nil {
		return watch.RegeneratorFunc(o.regenerate), nil
	}

	return watch.NewCommandRegenerator(o.command, watch.CommandOptions{
		Dir:     o.dir,
		Timeout: o.generateTimeout,
		Out:     out,
		Logger:  o.logger,
	})
}

// Spec is a fetched OpenAPI document.
type Spec struct {
	// Raw is the document exactly as fetched.
	Raw []byte

	OpenAPI    string
	Title      string
	Version    string
	Operations []string
}

// Fetch retrieves and summarizes the document at location. Only
// WithFetchTimeout applies.
func Fetch(ctx context.Context, location string, opts ...Option) (*Spec, error) {
	o := newOptions(opts)

	src, err := watch.NewSource(location, o.fetchTimeout)
	if err != nil {
		return nil, err
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := openapi.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}

	return &Spec{
		Raw:        data,
		OpenAPI:    doc.OpenAPI,
		Title:      doc.Title,
		Version:    doc.Version,
		Operations: doc.Operations,
	}, nil
}

// Comparison describes how two documents differ.
type Comparison struct {
	// Changed reports whether the documents differ byte-for-byte.
	Changed bool

	// Diff is a unified diff of the indented documents.
	Diff string

	Added       []string
	Removed     []string
	OldVersion  string
	NewVersion  string
	VersionBump string
}

// ErrNotOpenAPI is returned by Compare when either document is not OpenAPI.
// The returned Comparison still carries Changed and Diff.
var ErrNotOpenAPI = errors.New("not an OpenAPI document")

// Compare diffs two raw documents.
func Compare(oldDoc, newDoc []byte) (*Comparison, error) {
	res, err := textdiff.ComputeDocuments(oldDoc, newDoc, textdiff.DefaultOptions())
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Changed: string(oldDoc) != string(newDoc),
		Diff:    res.Unified,
	}

	prev, prevErr := openapi.Parse(oldDoc)
	curr, currErr := openapi.Parse(newDoc)

	if err := errors.Join(prevErr, currErr); err != nil {
		return cmp, fmt.Errorf("%w: %w", ErrNotOpenAPI, err)
	}

	c := openapi.Compare(prev, curr)

	for _, change := range c.Changes {
		switch change.Kind {
		case openapi.ChangeAdded:
			cmp.Added = append(cmp.Added, change.Operation)
		case openapi.ChangeRemoved:
			cmp.Removed = append(cmp.Removed, change.Operation)
		}
	}

	cmp.OldVersion = c.OldVersion
	cmp.NewVersion = c.NewVersion
	cmp.VersionBump = string(c.VersionBump)

	return cmp, nil
}

// Reactive state holders for UI layers.
type (
	File               = state.File
	FileSelection      = state.FileSelection
	FileState          = state.FileState
	Status             = state.Status
	Progress           = state.Progress
	ProgressState      = state.ProgressState
	StatusPollResponse = state.StatusPollResponse
)

// Task statuses.
const (
	StatusIdle      = state.StatusIdle
	StatusPending   = state.StatusPending
	StatusRunning   = state.StatusRunning
	StatusCompleted = state.StatusCompleted
	StatusFailed    = state.StatusFailed
)

// NewFileState returns an empty file selection holder.
func NewFileState() *FileState { return state.NewFileState() }

// NewProgressState returns a progress holder at {idle, 0}.
func NewProgressState() *ProgressState { return state.NewProgressState() }
