package watch

import (
	"log/slog"

	"github.com/variantexplain/specwatch/internal/openapi"
	"github.com/variantexplain/specwatch/internal/textdiff"
)

// reportChange describes a detected change. Documents that do not parse as
// OpenAPI are still reported by size.
func (w *Watcher) reportChange(previous, current []byte) {
	attrs := []any{
		slog.Int("previousBytes", len(previous)),
		slog.Int("currentBytes", len(current)),
	}

	w.printf("[%s] spec changed (%d → %d bytes)\n", now(), len(previous), len(current))

	prevDoc, prevErr := openapi.Parse(previous)
	currDoc, currErr := openapi.Parse(current)

	if prevErr == nil && currErr == nil {
		cmp := openapi.Compare(prevDoc, currDoc)
		summary := openapi.Summary(cmp.Changes)

		attrs = append(attrs,
			slog.String("version", currDoc.Version),
			slog.String("versionBump", string(cmp.VersionBump)),
			slog.String("operations", summary),
		)

		w.printf("  operations: %s\n", summary)

		if cmp.VersionBump != openapi.BumpNone {
			w.printf("  version: %s → %s (%s)\n", cmp.OldVersion, cmp.NewVersion, cmp.VersionBump)
		}

		for _, c := range cmp.Changes {
			w.opts.Logger.Debug("operation "+c.Kind, slog.String("operation", c.Operation))
		}
	}

	w.opts.Logger.Info("spec changed", attrs...)

	if !w.opts.ShowDiff {
		return
	}

	res, err := textdiff.ComputeDocuments(previous, current, textdiff.DefaultOptions())
	if err != nil {
		w.opts.Logger.Warn("could not diff spec", slog.String("error", err.Error()))
		return
	}

	textdiff.Write(w.out, res, w.opts.Color)
}
