package sink

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes lines to a Kafka topic, keyed by destination. The
// topic is append-only, so Overwrite and Append both publish; a compacted
// topic keeps only the latest line per destination, which matches the
// Overwrite reading.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink creates a KafkaSink publishing to topic on the given brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Overwrite publishes the line keyed by dest.
func (s *KafkaSink) Overwrite(ctx context.Context, dest, line string) error {
	return s.publish(ctx, dest, line)
}

// Append publishes the line keyed by dest.
func (s *KafkaSink) Append(ctx context.Context, dest, line string) error {
	return s.publish(ctx, dest, line)
}

func (s *KafkaSink) publish(ctx context.Context, dest, line string) error {
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(dest),
		Value: []byte(line),
		Time:  time.Now(),
	})
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
