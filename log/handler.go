package log

import (
	"io"

	"golang.org/x/exp/slog"
)

// NewTerminalHandler returns a slog.Handler that writes human-readable,
// level-prefixed lines to w, treating LevelTrace as enabled alongside the
// four standard slog levels.
func NewTerminalHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LevelTrace,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	})
}

// NewJSONHandler returns a slog.Handler emitting one JSON object per line,
// for machine-consumed log output (e.g. the CLI's --log.json flag).
func NewJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LevelTrace})
}
