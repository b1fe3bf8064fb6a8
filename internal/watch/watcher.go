package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/variantexplain/specwatch/internal/output"
	"github.com/variantexplain/specwatch/internal/state"
)

// Phase is the regeneration state of a Watcher.
type Phase string

// Watcher phases.
const (
	PhaseIdle       Phase = "idle"
	PhaseGenerating Phase = "generating"
)

// Outcome describes what a single Check did.
type Outcome string

// Check outcomes.
const (
	// OutcomeSkipped: a regeneration was running, nothing was fetched.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFetchFailed: the fetch failed, state is unchanged.
	OutcomeFetchFailed Outcome = "fetch-failed"
	// OutcomeInitial: first successful fetch, payload recorded.
	OutcomeInitial Outcome = "initial"
	// OutcomeUnchanged: payload is byte-identical to the previous one.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeChanged: payload differs, a regeneration was launched.
	OutcomeChanged Outcome = "changed"
)

// Executor runs a regeneration task. The default starts a goroutine.
type Executor func(task func())

// Options configures a Watcher.
type Options struct {
	// Interval between checks.
	Interval time.Duration
	// GenerateOnStart also regenerates after the first successful fetch.
	GenerateOnStart bool
	// ShowDiff prints a unified diff of each detected change.
	ShowDiff bool
	// Color enables ANSI colors in diffs.
	Color bool
	// Notify adds checks on file-system events for file sources.
	Notify bool
	// Debounce is the quiet period applied to file-system events.
	Debounce time.Duration
	// Snapshot, when set, receives every newly recorded payload.
	Snapshot output.Writer
	// Executor spawns regeneration tasks.
	Executor Executor
	// Logger is used for structured logging.
	Logger *slog.Logger
	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns the default watch options: a one second interval,
// file notifications on, no diff output.
func DefaultOptions() Options {
	return Options{
		Interval: time.Second,
		Notify:   true,
		Debounce: 250 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Watcher polls a Source and runs a Regenerator when the document changes.
// At most one regeneration runs at a time; checks made while one is running
// are skipped rather than queued.
type Watcher struct {
	source Source
	regen  Regenerator
	opts   Options
	out    *SyncWriter

	checkMu sync.Mutex

	mu          sync.Mutex
	previous    []byte
	hasPrevious bool

	phase       *state.Cell[Phase]
	generations atomic.Int64
	inflight    sync.WaitGroup
}

// New creates a watcher. Zero-valued options fall back to DefaultOptions.
func New(source Source, regen Regenerator, opts Options) *Watcher {
	defaults := DefaultOptions()

	if opts.Interval <= 0 {
		opts.Interval = defaults.Interval
	}

	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if opts.Executor == nil {
		opts.Executor = func(task func()) { go task() }
	}

	return &Watcher{
		source: source,
		regen:  regen,
		opts:   opts,
		out:    NewSyncWriter(opts.Out),
		phase:  state.NewCell(PhaseIdle),
	}
}

// Run checks once immediately and then once per interval until ctx is
// cancelled. All checks happen on the calling goroutine, so they never
// overlap. A regeneration still running at shutdown is left to finish on its
// own.
func (w *Watcher) Run(ctx context.Context) error {
	var fileEvents <-chan struct{}

	if fs, ok := w.source.(*FileSource); ok && w.opts.Notify {
		notifier, err := NewNotifier(fs.Path(), w.opts.Debounce, w.opts.Logger)
		if err != nil {
			return fmt.Errorf("watching spec file: %w", err)
		}

		defer func() { _ = notifier.Close() }()

		fileEvents = notifier.Events()
	}

	w.printf("watching %s every %s\n", w.source, w.opts.Interval)

	w.Check(ctx)

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.printf("\nwatcher stopped\n")
			return nil
		case <-ticker.C:
			w.Check(ctx)
		case <-fileEvents:
			w.Check(ctx)
		}
	}
}

// Check is one tick: skip while a regeneration runs, otherwise fetch and
// compare the document with the previous payload, launching a regeneration
// when it changed. Errors are logged, never returned. Concurrent calls are
// serialized.
func (w *Watcher) Check(ctx context.Context) Outcome {
	w.checkMu.Lock()
	defer w.checkMu.Unlock()

	logger := w.opts.Logger

	if w.Generating() {
		logger.Debug("regeneration in progress, skipping check")
		return OutcomeSkipped
	}

	current, err := w.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("fetch interrupted", slog.String("error", err.Error()))
		} else {
			logger.Error("failed to fetch spec", slog.String("source", w.source.String()), slog.String("error", err.Error()))
		}

		return OutcomeFetchFailed
	}

	w.mu.Lock()
	previous, hadPrevious := w.previous, w.hasPrevious
	w.mu.Unlock()

	if !hadPrevious {
		w.record(current)
		w.printf("[%s] initial spec loaded (%d bytes)\n", now(), len(current))

		if w.opts.GenerateOnStart {
			w.launch(ctx)
		}

		return OutcomeInitial
	}

	if bytes.Equal(previous, current) {
		logger.Debug("spec unchanged", slog.Int("bytes", len(current)))
		return OutcomeUnchanged
	}

	w.record(current)
	w.reportChange(previous, current)
	w.launch(ctx)

	return OutcomeChanged
}

// Previous returns a copy of the last recorded payload, or nil before the
// first successful fetch.
func (w *Watcher) Previous() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.hasPrevious {
		return nil
	}

	return bytes.Clone(w.previous)
}

// Phase returns the current phase.
func (w *Watcher) Phase() Phase {
	return w.phase.Get()
}

// Generating reports whether a regeneration is in progress.
func (w *Watcher) Generating() bool {
	return w.phase.Get() == PhaseGenerating
}

// SubscribePhase registers fn for phase transitions.
func (w *Watcher) SubscribePhase(fn func(Phase)) func() {
	return w.phase.Subscribe(fn)
}

// Generations returns how many regenerations have been launched.
func (w *Watcher) Generations() int {
	return int(w.generations.Load())
}

// Wait blocks until every launched regeneration has completed.
func (w *Watcher) Wait() {
	w.inflight.Wait()
}

func (w *Watcher) record(payload []byte) {
	w.mu.Lock()
	w.previous = payload
	w.hasPrevious = true
	w.mu.Unlock()

	if w.opts.Snapshot == nil {
		return
	}

	if err := w.opts.Snapshot.Write(payload); err != nil {
		w.opts.Logger.Error("failed to write spec snapshot", slog.String("error", err.Error()))
	}
}

// launch moves to PhaseGenerating and hands the regeneration to the executor.
// The phase returns to idle when the task ends, whatever the outcome. The task
// runs detached from ctx cancellation.
func (w *Watcher) launch(ctx context.Context) {
	w.phase.Set(PhaseGenerating)
	w.inflight.Add(1)
	n := w.generations.Add(1)

	runCtx := context.WithoutCancel(ctx)
	logger := w.opts.Logger.With(slog.Int64("generation", n))

	w.printf("[%s] running regeneration #%d\n", now(), n)

	w.opts.Executor(func() {
		defer w.inflight.Done()
		defer w.phase.Set(PhaseIdle)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("regeneration panicked", slog.Any("error", r))
				w.printf("[%s] regeneration #%d → ERROR: panic: %v\n", now(), n, r)
			}
		}()

		start := time.Now()

		if err := w.regen.Regenerate(runCtx); err != nil {
			logger.Error("regeneration failed", slog.String("error", err.Error()))
			w.printf("[%s] regeneration #%d → ERROR: %v\n", now(), n, err)

			return
		}

		w.printf("[%s] regeneration #%d → OK (%s)\n", now(), n, time.Since(start).Round(time.Millisecond))
	})
}

func (w *Watcher) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}

func now() string {
	return time.Now().Format("15:04:05")
}

// SyncWriter serializes writes from the check loop and regeneration tasks.
// Share one between the Watcher and a CommandRegenerator that print to the
// same terminal.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter wraps w. A *SyncWriter is returned unchanged.
func NewSyncWriter(w io.Writer) *SyncWriter {
	if sw, ok := w.(*SyncWriter); ok {
		return sw
	}

	return &SyncWriter{w: w}
}

func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Write(p)
}
