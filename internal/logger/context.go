package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const commandIDKey ctxKey = "command_id"

func WithCommandID(ctx context.Context, commandID string) context.Context {
	return context.WithValue(ctx, commandIDKey, commandID)
}

func CommandIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(commandIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the logger with command_id attached when the context has one.
func FromCtx(ctx context.Context) *zap.Logger {
	id := CommandIDFrom(ctx)
	if id == "" {
		return L()
	}
	return L().With(zap.String("command_id", id))
}
