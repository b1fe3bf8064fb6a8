package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer is a destination for spec document snapshots.
type Writer interface {
	Write(data []byte) error
}

// StdoutWriter writes documents to a stream, converting them first.
type StdoutWriter struct {
	out    io.Writer
	format Format
}

// NewStdoutWriter creates a writer for w in the given format. If w is nil,
// os.Stdout is used.
func NewStdoutWriter(w io.Writer, format Format) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StdoutWriter{out: w, format: format}
}

// Write converts data and writes it, adding a trailing newline if missing.
func (sw *StdoutWriter) Write(data []byte) error {
	converted, err := Convert(data, sw.format)
	if err != nil {
		return err
	}

	if len(converted) > 0 && converted[len(converted)-1] != '\n' {
		converted = append(converted, '\n')
	}

	if _, err := sw.out.Write(converted); err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}

// FileWriter replaces a file's content atomically: data goes to a temporary
// file in the same directory which is then renamed over the target. Readers
// such as a code generator never observe a partial document.
type FileWriter struct {
	path   string
	perm   os.FileMode
	format Format
	logger *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithFormat converts documents before writing. The default is FormatJSON,
// which writes the payload unchanged.
func WithFormat(format Format) FileWriterOption {
	return func(fw *FileWriter) {
		fw.format = format
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// NewFileWriter creates a writer for path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		perm:   0o644,
		format: FormatJSON,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write creates parent directories and replaces the file with data.
func (fw *FileWriter) Write(data []byte) error {
	converted, err := Convert(data, fw.format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fw.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(converted); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if err := tmp.Chmod(fw.perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting permissions on %s: %w", fw.path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", fw.path, err)
	}

	if err := os.Rename(tmpName, fw.path); err != nil {
		return fmt.Errorf("replacing %s: %w", fw.path, err)
	}

	fw.logger.Debug("wrote snapshot",
		slog.String("path", fw.path),
		slog.Int("bytes", len(converted)),
		slog.String("format", string(fw.format)),
	)

	return nil
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}
