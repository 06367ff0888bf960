// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclamations/internal/common/config"
	"reclamations/internal/common/errors"
	commonkafka "reclamations/internal/common/kafka"
	"reclamations/internal/common/logger"
	"reclamations/internal/complaints/publisher"
	"reclamations/internal/models"
	"reclamations/internal/workers/runner"

	al "reclamations/internal/workers/complaints/audit-log"
)

// Runs against a real broker: E2E_KAFKA_BROKERS=localhost:9092 go test ./test/e2e/...
func kafkaConfig(t *testing.T) config.KafkaConfig {
	t.Helper()
	brokers := os.Getenv("E2E_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("E2E_KAFKA_BROKERS not set")
	}
	return config.KafkaConfig{
		Brokers:      strings.Split(brokers, ","),
		Topic:        "complaints_e2e_" + strings.ReplaceAll(uuid.NewString()[:8], "-", ""),
		DLQSuffix:    config.DefaultDLQSuffix,
		Partitions:   3,
		WriteTimeout: 10000,
	}
}

var fastPolicy = runner.Policy{
	InitialInterval: 10 * time.Millisecond,
	Multiplier:      2,
	MaxInterval:     50 * time.Millisecond,
	MaxRetries:      3,
}

type recorder struct {
	mu   sync.Mutex
	seen []kafka.Message
}

func (r *recorder) add(msg kafka.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, msg)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestFullE2E(t *testing.T) {
	cfg := kafkaConfig(t)
	log := logger.NewTestLogger(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	require.NoError(t, commonkafka.EnsureTopics(ctx, cfg), "topic creation failed")
	t.Logf("Using topic %s", cfg.Topic)

	writer := commonkafka.NewWriter(cfg)
	defer writer.Close()
	dlq := commonkafka.NewDLQWriter(cfg)
	defer dlq.Close()

	pub := publisher.New(writer, 10*time.Second, log)

	const total = 5
	for i := 0; i < total; i++ {
		p := models.Payload{
			models.KeyTrackingID: fmt.Sprintf("trk-e2e-%d", i),
			"complaintNumber":    fmt.Sprintf("REC-%d", i),
			"MOTIF":              "Opération non reconnue",
		}
		require.NoError(t, pub.Publish(ctx, cfg.Topic, p))
	}

	t.Run("audit group consumes every event", func(t *testing.T) {
		handler := al.NewHandler(al.LoadConfig(), log)
		rec := &recorder{}
		reader := commonkafka.NewReader(cfg, "e2e-audit-"+cfg.Topic)
		defer reader.Close()

		group := runner.NewGroup("e2e-audit", reader, dlq, runner.HandlerFunc(func(ctx context.Context, msg kafka.Message) error {
			rec.add(msg)
			return handler.Handle(ctx, msg)
		}), fastPolicy, log)

		runCtx, stop := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- group.Run(runCtx) }()

		assert.Eventually(t, func() bool { return rec.count() == total }, 60*time.Second, 200*time.Millisecond)
		stop()
		assert.NoError(t, <-done)
	})

	t.Run("failing group dead-letters with headers", func(t *testing.T) {
		reader := commonkafka.NewReader(cfg, "e2e-failing-"+cfg.Topic)
		defer reader.Close()

		group := runner.NewGroup("e2e-failing", reader, dlq, runner.HandlerFunc(func(ctx context.Context, msg kafka.Message) error {
			return errors.NewWorkflowCallError(fmt.Errorf("upstream 503"))
		}), fastPolicy, log)

		runCtx, stop := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- group.Run(runCtx) }()

		dlqReader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			GroupID:     "e2e-dlq-" + cfg.Topic,
			Topic:       cfg.DLQTopic(),
			StartOffset: kafka.FirstOffset,
		})
		defer dlqReader.Close()

		for i := 0; i < total; i++ {
			readCtx, cancelRead := context.WithTimeout(ctx, 60*time.Second)
			msg, err := dlqReader.ReadMessage(readCtx)
			cancelRead()
			require.NoError(t, err)

			headers := map[string]string{}
			for _, h := range msg.Headers {
				headers[h.Key] = string(h.Value)
			}
			assert.Equal(t, "e2e-failing", headers[runner.HeaderDLQGroup])
			assert.Equal(t, "4", headers[runner.HeaderAttempts])
			assert.Contains(t, headers[runner.HeaderDLQReason], "upstream 503")
			assert.True(t, strings.HasPrefix(string(msg.Key), "trk-e2e-"))
		}

		stop()
		assert.NoError(t, <-done)
	})
}
