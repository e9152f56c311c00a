// Package slog provides logging decorators for reblog services. Each call
// is logged once when it returns: at info level on success, at warn level
// with the error otherwise.
package slog

import (
	"context"
	"log/slog"
	"time"
)

func logDone(ctx context.Context, logger *slog.Logger, msg string, begin time.Time, err error, attrs ...any) {
	attrs = append(attrs, "duration", time.Since(begin))
	if err != nil {
		logger.WarnContext(ctx, msg, append(attrs, "err", err)...)
		return
	}
	logger.InfoContext(ctx, msg, attrs...)
}
