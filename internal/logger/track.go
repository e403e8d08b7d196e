package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Track stamps ctx with a fresh command id unless it already carries one.
// The returned func logs the command together with its duration and outcome.
func Track(ctx context.Context, command string) (context.Context, func(err error)) {
	id := CommandIDFrom(ctx)
	if id == "" {
		id = uuid.New().String()
		ctx = WithCommandID(ctx, id)
	}

	start := time.Now()
	return ctx, func(err error) {
		log := FromCtx(ctx).With(
			zap.String("command", command),
			zap.Duration("duration", time.Since(start)),
		)
		if err != nil {
			log.Info("command rejected", zap.Error(err))
			return
		}
		log.Info("command handled")
	}
}
