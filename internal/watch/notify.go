package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Notifier signals when a local spec file is written. It watches the file's
// directory, so a file replaced by renaming a temporary file over it is
// still seen.
type Notifier struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	target    string
	events    chan struct{}
	logger    *slog.Logger
}

// NewNotifier starts watching path. Bursts of events within debounce are
// reported once on Events.
func NewNotifier(path string, debounce time.Duration, logger *slog.Logger) (*Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving spec file %q: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(target)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching directory of %q: %w", target, err)
	}

	n := &Notifier{
		watcher: fw,
		target:  target,
		events:  make(chan struct{}, 1),
		logger:  logger,
	}

	n.debouncer = NewDebouncer(debounce, n.signal)

	go n.loop()

	return n, nil
}

// Events delivers one value per debounced burst of writes. At most one
// notification is buffered.
func (n *Notifier) Events() <-chan struct{} {
	return n.events
}

// Close stops watching.
func (n *Notifier) Close() error {
	n.debouncer.Stop()
	return n.watcher.Close()
}

func (n *Notifier) loop() {
	for {
		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}

			if n.isRelevant(event) {
				n.logger.Debug("spec file event", slog.String("path", event.Name), slog.String("op", event.Op.String()))
				n.debouncer.Trigger()
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}

			n.logger.Error("file watcher error", slog.String("error", err.Error()))
		}
	}
}

func (n *Notifier) signal() {
	select {
	case n.events <- struct{}{}:
	default:
	}
}

// isRelevant keeps writes and creations of the target file only.
func (n *Notifier) isRelevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return name == n.target
}
