// Package kafka builds the kafka-go readers and writers used by the
// complaint publisher and the consumer groups.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"reclamations/internal/common/config"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafka.Writer the pipeline depends on.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reader is the subset of *kafka.Reader a consumer group depends on.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter returns a synchronous writer that waits for all in-sync
// replicas. Messages with the same key land on the same partition.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		MaxAttempts:  1,
	}
}

// NewDLQWriter returns a writer for <topic>.DLQ that keeps each message on
// the partition number it was read from.
func NewDLQWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.DLQTopic(),
		Balancer:     &PartitionPreserving{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		RequiredAcks: kafka.RequireAll,
	}
}

// NewReader joins groupID on the complaint topic. Offsets are committed
// explicitly by the caller.
func NewReader(cfg config.KafkaConfig, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        groupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
}

// PartitionPreserving routes a message to the partition it carries. When
// that partition does not exist on the target topic it falls back to
// hashing the key.
type PartitionPreserving struct {
	fallback kafka.Hash
}

func (b *PartitionPreserving) Balance(msg kafka.Message, partitions ...int) int {
	for _, p := range partitions {
		if p == msg.Partition {
			return p
		}
	}
	return b.fallback.Balance(msg, partitions...)
}

// EnsureTopics creates the complaint topic and its dead-letter topic with
// the same partition count. Existing topics are left alone.
func EnsureTopics(ctx context.Context, cfg config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find kafka controller: %w", err)
	}

	var dialer kafka.Dialer
	ctrl, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer ctrl.Close()

	topics := []kafka.TopicConfig{
		{Topic: cfg.Topic, NumPartitions: cfg.Partitions, ReplicationFactor: 1},
		{Topic: cfg.DLQTopic(), NumPartitions: cfg.Partitions, ReplicationFactor: 1},
	}
	if err := ctrl.CreateTopics(topics...); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	return nil
}
