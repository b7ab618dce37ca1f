package outbox

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher delivers one outbox row to the event stream.
type Publisher interface {
	Publish(ctx context.Context, row Row) error
}

// KafkaPublisher publishes outbox rows to a Kafka topic, keyed by aggregate
// ID so events for one case stay ordered within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaPublisher connects a producer to the given brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, row Row) error {
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(row.AggregateID),
		Value: row.Payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce outbox event %s: %w", row.ID, err)
	}
	return nil
}

// Close flushes and shuts down the producer.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
