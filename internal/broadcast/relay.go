package broadcast

import (
	"context"

	"go.uber.org/zap"
)

const relaySubscriberID = "kafka-relay"

// RelayStatusEvents mirrors every hub event to kafka so out-of-process
// consumers see the same stream the dashboards do. Publish failures are
// logged and skipped; the stream is best-effort by contract.
func RelayStatusEvents(
	ctx context.Context,
	hub *Hub,
	publisher EventPublisher,
	logger *zap.Logger,
) {
	log := logger.Named("broadcast.relay")
	sub := hub.Subscribe(relaySubscriberID)
	defer hub.Unsubscribe(relaySubscriberID)

	log.Info("status event relay started")

	for {
		select {
		case <-ctx.Done():
			log.Info("status event relay stopped")
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := publisher.PublishStatusChanged(ctx, evt); err != nil {
				log.Error("publish status event failed",
					zap.String("type", evt.Type),
					zap.String("employee_id", evt.EmployeeID),
					zap.Error(err),
				)
			}
		}
	}
}
