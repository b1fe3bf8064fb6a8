// Package textdiff renders line-based unified diffs between two versions of a
// spec document.
package textdiff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Result holds a computed unified diff.
type Result struct {
	Unified string
	Hunks   []string
	Added   int
	Removed int
}

// HasDifferences reports whether the inputs differed.
func (r *Result) HasDifferences() bool {
	return r.Unified != ""
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultOptions labels the sides "previous" and "current" with three lines
// of context.
func DefaultOptions() Options {
	return Options{
		OldLabel: "previous",
		NewLabel: "current",
		Context:  3,
	}
}

// Compute returns the unified diff between two texts.
func Compute(oldText, newText string, opts Options) (*Result, error) {
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(oldText),
		B:        splitLines(newText),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	})
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	res := &Result{Unified: unified}
	if unified == "" {
		return res, nil
	}

	res.Hunks = extractHunks(unified)
	res.Added, res.Removed = countChanges(unified)

	return res, nil
}

// ComputeDocuments diffs two raw documents. JSON input is indented first so
// that single-line payloads still produce a useful line diff; anything else is
// compared as-is.
func ComputeDocuments(oldDoc, newDoc []byte, opts Options) (*Result, error) {
	return Compute(normalize(oldDoc), normalize(newDoc), opts)
}

// Write prints the diff, optionally with ANSI colors.
func Write(w io.Writer, res *Result, color bool) {
	if !res.HasDifferences() {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(res.Unified, "\n"), "\n") {
		if color {
			line = colorize(line)
		}

		_, _ = fmt.Fprintln(w, line)
	}
}

func normalize(doc []byte) string {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return string(doc)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(doc)
	}

	buf.WriteByte('\n')

	return buf.String()
}

func colorize(line string) string {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return bold + line + reset
	case strings.HasPrefix(line, "@@"):
		return cyan + line + reset
	case strings.HasPrefix(line, "-"):
		return red + line + reset
	case strings.HasPrefix(line, "+"):
		return green + line + reset
	default:
		return line
	}
}

func extractHunks(unified string) []string {
	var (
		hunks   []string
		current strings.Builder
	)

	for _, line := range strings.SplitAfter(unified, "\n") {
		if strings.HasPrefix(line, "@@") && current.Len() > 0 {
			hunks = append(hunks, current.String())
			current.Reset()
		}

		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") {
			continue
		}

		current.WriteString(line)
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

func countChanges(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}

	return added, removed
}

// splitLines keeps the trailing newline on each line, as difflib expects.
// A terminating newline does not start an extra empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
