// Package common carries request-scoped values shared by the command handlers
package common

import (
	"context"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

type loggerKey struct{}

// WithLogger attaches logger for handlers further down the call
func WithLogger(ctx context.Context, logger shared.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the attached logger, or one that discards everything
func LoggerFromContext(ctx context.Context) shared.Logger {
	if l, ok := ctx.Value(loggerKey{}).(shared.Logger); ok && l != nil {
		return l
	}
	return shared.NopLogger{}
}
