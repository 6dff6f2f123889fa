package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/vstore/pkg/store"
)

type loggingObserver struct {
	logger *slog.Logger
}

// Logging creates an observer that logs every initialization at debug level
// and every failure at warn level. A nil logger uses slog.Default().
func Logging(logger *slog.Logger) store.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingObserver{logger: logger}
}

type logStartKey struct{}

func (o *loggingObserver) InitStart(ctx context.Context, info store.InitInfo) context.Context {
	return context.WithValue(ctx, logStartKey{}, time.Now())
}

func (o *loggingObserver) InitEnd(ctx context.Context, info store.InitInfo, err error) {
	var duration time.Duration
	if start, ok := ctx.Value(logStartKey{}).(time.Time); ok {
		duration = time.Since(start)
	}

	if err != nil {
		o.logger.Warn("store init failed",
			"identifier", info.Identifier,
			"duration", duration,
			"error", err,
		)
		return
	}
	o.logger.Debug("store initialized",
		"identifier", info.Identifier,
		"depth", info.Depth,
		"duration", duration,
	)
}
