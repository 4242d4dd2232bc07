package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// newJSONHandler emits one object per line with short stable keys: ts (UTC,
// millisecond precision), level (lowercase), msg, and source as file:line.
// Duration attributes are written as milliseconds so log shippers can sum them.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	replace := func(groups []string, attr slog.Attr) slog.Attr {
		if len(groups) == 0 {
			switch attr.Key {
			case slog.TimeKey:
				if attr.Value.Kind() == slog.KindTime {
					return slog.String("ts", attr.Value.Time().UTC().Format("2006-01-02T15:04:05.000Z"))
				}
				attr.Key = "ts"
				return attr
			case slog.LevelKey:
				return slog.String(slog.LevelKey, strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
				return attr
			}
		}
		if attr.Value.Kind() == slog.KindDuration {
			return slog.Int64(attr.Key+"_ms", attr.Value.Duration().Milliseconds())
		}
		return attr
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replace,
	})
}
