// Package publisher delivers enriched complaints to the message bus.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reclamations/internal/common/errors"
	commonkafka "reclamations/internal/common/kafka"
	"reclamations/internal/common/logger"
	"reclamations/internal/models"

	"github.com/segmentio/kafka-go"
)

// Publisher writes one message per complaint, keyed by tracking id. It
// returns once the broker acknowledged the write or failed; it never
// retries.
type Publisher struct {
	writer  commonkafka.Writer
	timeout time.Duration
	logger  logger.Logger
}

func New(writer commonkafka.Writer, timeout time.Duration, log logger.Logger) *Publisher {
	return &Publisher{
		writer:  writer,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "publisher"}),
	}
}

// Publish sends payload to topic. When the writer is bound to a topic,
// topic must be empty or equal to it.
func (p *Publisher) Publish(ctx context.Context, topic string, payload models.Payload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return errors.NewPublishError(topic, fmt.Errorf("encode payload: %w", err))
	}

	msg := kafka.Message{
		Key:   []byte(payload.TrackingID()),
		Value: value,
	}
	if w, ok := p.writer.(*kafka.Writer); ok && w.Topic != "" {
		if topic != "" && topic != w.Topic {
			return errors.NewPublishError(topic, fmt.Errorf("writer is bound to topic %q", w.Topic))
		}
	} else {
		msg.Topic = topic
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.NewPublishError(topic, err)
	}

	p.logger.Info("Complaint event published", map[string]interface{}{
		"topic":        topic,
		"trackingId":   payload.TrackingID(),
		"clientNumber": payload.String(models.KeyClientID),
		"type":         payload.String("TYPERECLAMATION"),
	})
	return nil
}
