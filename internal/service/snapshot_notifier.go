package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-dashboard/internal/events"
	"github.com/spec-kit/queue-dashboard/internal/observability"
)

// SnapshotNotifier turns snapshot events into log lines and metrics.
type SnapshotNotifier struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewSnapshotNotifier creates the notifier.
func NewSnapshotNotifier(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *SnapshotNotifier {
	return &SnapshotNotifier{dispatcher: dispatcher, logger: logger, metrics: metrics}
}

// RegisterHandlers subscribes to events.
func (n *SnapshotNotifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSnapshotRefreshed, n.handleRefreshed)
	n.dispatcher.Subscribe(events.EventSnapshotFailed, n.handleFailed)
}

func (n *SnapshotNotifier) handleRefreshed(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SnapshotRefreshedPayload)
	n.logger.Info("SnapshotRefreshed",
		zap.String("event_id", event.ID),
		zap.Int("queues", payload.Queues),
		zap.Int("tickets", payload.Tickets),
		zap.Int("users", payload.Users),
		zap.Int("issues", payload.Issues),
		zap.Duration("duration", payload.Duration))
	n.metrics.RecordSnapshot(true, payload.Queues, payload.Tickets)
	return nil
}

func (n *SnapshotNotifier) handleFailed(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SnapshotFailedPayload)
	n.logger.Error("SnapshotFailed", zap.String("event_id", event.ID), zap.String("error", payload.Error))
	n.metrics.RecordSnapshot(false, 0, 0)
	return nil
}
