package broadcast

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/anand05ms/Employee-tracker/internal/events"
)

type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event events.StatusChangedEvent) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishStatusChanged(context.Context, events.StatusChangedEvent) error {
	return nil
}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

type kafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(writer *kafka.Writer) EventPublisher {
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) PublishStatusChanged(
	ctx context.Context,
	event events.StatusChangedEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: events.StatusChangedTopic,
		Key:   []byte(event.EmployeeID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}
