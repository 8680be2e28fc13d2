// Package logging configures the process logger and carries it in contexts.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
)

var ErrUnknownLevel = errors.Base("unknown log level")

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Errorf("%w: %q", ErrUnknownLevel, value)
	}
}

// Setup installs a tint handler writing to w as the default logger and
// returns ctx carrying it. Errors are rendered with their message only.
func Setup(ctx context.Context, w io.Writer, level slog.Level, color bool) context.Context {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() != slog.KindAny {
				return a
			}
			if err, ok := a.Value.Any().(error); ok {
				return slog.String(a.Key, err.Error())
			}
			return a
		},
	})
	logger := slog.New(slogctx.NewHandler(handler, nil))
	slog.SetDefault(logger)
	return slogctx.NewCtx(ctx, logger)
}
