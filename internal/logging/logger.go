// Package logging builds the JSON-lines logger shared by the HTTP
// middleware, the media pipeline and startup code.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// TimeKey replaces slog's default "time" attribute name.
const TimeKey = "ts"

// New returns a JSON logger writing one object per line to w, with
// timestamps rendered in loc as RFC3339 under the "ts" key.
// A nil writer means stdout and a nil location means UTC.
func New(w io.Writer, loc *time.Location) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String(TimeKey, a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	})
	return slog.New(h)
}

// Discard is a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
