// Package events publishes order lifecycle events to the order topic so that
// downstream consumers (analytics, fulfilment) can react to changes.
package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

// Publisher emits one event keyed by "order-<verb>-<id>" with the JSON order
// as the value.
type Publisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
}

// KafkaPublisher writes events through a shared kafka-go writer.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}
