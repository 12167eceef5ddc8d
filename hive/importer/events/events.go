// Package events publishes shard-commit notifications to Kafka for
// downstream consumers (e.g. a materialized-view refresher). It is a
// best-effort sidecar to the orchestrator: each publish is a synchronous
// write that the caller waits for, but publish failures are never allowed
// to fail a commit.
package events

import (
	"context"
	"encoding/json"

	segmentio "github.com/segmentio/kafka-go"

	"github.com/shardloader/hiveimport/errors"
	"github.com/shardloader/hiveimport/hive"
)

// ShardCommitted is emitted after a shard is durably committed to the
// catalog.
type ShardCommitted struct {
	TableID        hive.TableID  `json:"tableId"`
	PartitionName  string        `json:"partitionName"`
	ShardID        hive.ShardID  `json:"shardId"`
	NodeIdentifier string        `json:"nodeIdentifier"`
}

// Publisher publishes import lifecycle events.
type Publisher interface {
	PublishShardCommitted(ctx context.Context, event ShardCommitted) error
}

type kafkaPublisher struct {
	writer *segmentio.Writer
}

// NewKafkaPublisher returns a Publisher that writes to the given topic on
// the given brokers.
func NewKafkaPublisher(brokers []string, topic string) Publisher {
	return &kafkaPublisher{
		writer: &segmentio.Writer{
			Addr:                   segmentio.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &segmentio.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *kafkaPublisher) PublishShardCommitted(ctx context.Context, event ShardCommitted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshalling shard.committed event")
	}

	return p.writer.WriteMessages(ctx, segmentio.Message{
		Key:   []byte(event.PartitionName),
		Value: body,
	})
}

// Close releases the underlying Kafka connection.
func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
