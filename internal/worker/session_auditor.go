package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/events"
	"github.com/vaahan-portal/violation-portal/internal/observability"
)

// StartSessionAuditor subscribes audit logging and metrics to every
// session lifecycle event.
func StartSessionAuditor(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}

	audit := func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Time("at", event.Timestamp),
		}
		if event.Identity != nil {
			fields = append(fields,
				zap.String("subject", event.Identity.Subject),
				zap.String("role", string(event.Identity.Role)),
			)
		}
		if event.Reason != "" {
			fields = append(fields, zap.String("reason", string(event.Reason)))
		}
		logger.Info("session audit", fields...)
		metrics.RecordSessionEvent(string(event.Type), string(event.Reason))
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventSessionStarted,
		events.EventSessionRestored,
		events.EventSessionEnded,
	} {
		dispatcher.Subscribe(eventType, audit)
	}
}
