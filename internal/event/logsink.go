package event

import (
	"context"
	"log/slog"
)

// LogSink writes every moderation event to logger until ctx is done.
func LogSink(ctx context.Context, bus Bus, logger *slog.Logger) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			logger.Info("board event",
				"event_id", e.ID,
				"type", string(e.Type),
				"subject", e.Subject,
				"actor", e.Actor,
				"actor_id", e.ActorID,
				"at", e.Timestamp,
			)
		}
	}
}
