package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the dispatcher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher appends one message per transfer to a topic, keyed by the
// transfer reference so that a consumer sees redeliveries of the same
// transfer in order.
type KafkaDispatcher struct {
	writer MessageWriter
}

// NewKafkaWriter builds a writer for the given brokers and topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewKafkaDispatcher wraps a writer, typically from NewKafkaWriter.
func NewKafkaDispatcher(writer MessageWriter) *KafkaDispatcher {
	return &KafkaDispatcher{writer: writer}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TransactionReference),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Name)},
			{Key: "sender_id", Value: []byte(strconv.FormatUint(uint64(event.Sender.ID), 10))},
			{Key: "receiver_id", Value: []byte(strconv.FormatUint(uint64(event.Receiver.ID), 10))},
		},
		Time: event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to publish transfer %s: %w", event.TransactionReference, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
