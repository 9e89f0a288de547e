package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
)

// NewLogger returns a text logger on dst. quiet keeps warnings and errors
// only; verbose adds debug records. Every record carries the run id.
func NewLogger(dst io.Writer, quiet, verbose bool, runID string) *slog.Logger {
	lvl := slog.LevelInfo
	switch {
	case quiet:
		lvl = slog.LevelWarn
	case verbose:
		lvl = slog.LevelDebug
	}
	h := slog.NewTextHandler(dst, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			// drop timestamps so repeated runs log identically
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	lg := slog.New(h)
	if runID != "" {
		lg = lg.With("run", runID)
	}
	return lg
}

// Warnf logs a formatted warning.
func Warnf(lg *slog.Logger, format string, a ...any) {
	lg.Warn(fmt.Sprintf(format, a...))
}
