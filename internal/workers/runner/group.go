// internal/workers/runner/group.go
package runner

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"reclamations/internal/common/errors"
	commonkafka "reclamations/internal/common/kafka"
	"reclamations/internal/common/logger"
	"reclamations/internal/common/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderDLQReason      = "x-dlq-reason"
	HeaderDLQGroup       = "x-dlq-group"
	HeaderOriginalOffset = "x-original-offset"
	HeaderAttempts       = "x-dlq-attempts"

	partitionBuffer = 16
	commitTimeout   = 5 * time.Second
)

// Handler processes one message. A returned error is classified by the
// errors package: retryable codes are retried, everything else is
// dead-lettered at once.
type Handler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

type HandlerFunc func(ctx context.Context, msg kafka.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg kafka.Message) error {
	return f(ctx, msg)
}

// Group consumes one topic under one consumer group id. Each partition gets
// its own goroutine so messages of a partition complete in order while
// partitions progress independently.
type Group struct {
	name       string
	reader     commonkafka.Reader
	dlq        commonkafka.Writer
	handler    Handler
	policy     Policy
	errHandler *errors.ErrorHandler
	logger     logger.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewGroup(name string, reader commonkafka.Reader, dlq commonkafka.Writer, handler Handler, policy Policy, log logger.Logger) *Group {
	l := log.WithFields(map[string]interface{}{"group": name})
	return &Group{
		name:       name,
		reader:     reader,
		dlq:        dlq,
		handler:    handler,
		policy:     policy,
		errHandler: errors.NewErrorHandler(l),
		logger:     l,
		sleep:      sleepContext,
		now:        time.Now,
	}
}

func (g *Group) Name() string { return g.name }

// Run fetches until ctx is cancelled or the reader is closed. Messages
// still in flight at shutdown are left uncommitted and redelivered later.
func (g *Group) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	partitions := make(map[int]chan kafka.Message)
	defer func() {
		for _, ch := range partitions {
			close(ch)
		}
		wg.Wait()
	}()

	g.logger.Info("Consumer group started", nil)
	for {
		msg, err := g.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || goerrors.Is(err, io.EOF) {
				g.logger.Info("Consumer group stopped", nil)
				return nil
			}
			return fmt.Errorf("group %s: fetch failed: %w", g.name, err)
		}

		ch, ok := partitions[msg.Partition]
		if !ok {
			ch = make(chan kafka.Message, partitionBuffer)
			partitions[msg.Partition] = ch
			wg.Add(1)
			go g.partitionWorker(ctx, msg.Partition, ch, &wg)
		}

		select {
		case ch <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

func (g *Group) partitionWorker(ctx context.Context, partition int, ch <-chan kafka.Message, wg *sync.WaitGroup) {
	defer wg.Done()
	gauge := metrics.PartitionWorkersActive.WithLabelValues(g.name)
	gauge.Inc()
	defer gauge.Dec()

	g.logger.Debug("Partition worker started", map[string]interface{}{"partition": partition})
	for msg := range ch {
		if ctx.Err() != nil {
			continue
		}
		g.process(ctx, msg)
	}
}

func (g *Group) process(ctx context.Context, msg kafka.Message) {
	start := g.now()
	fields := map[string]interface{}{
		"partition": msg.Partition,
		"offset":    msg.Offset,
		"key":       string(msg.Key),
	}

	state, err := g.deliver(ctx, msg, fields)
	if err != nil {
		g.logger.Info("Shutdown during retry, message left uncommitted", fields)
		return
	}

	outcome := "ok"
	if state.LastErr != nil {
		if err := g.deadLetter(ctx, msg, state); err != nil {
			g.logger.Error("Dead-letter write failed, message left uncommitted", map[string]interface{}{
				"partition": msg.Partition,
				"offset":    msg.Offset,
				"error":     err.Error(),
			})
			return
		}
		g.errHandler.LogExhausted(withAttempt(fields, state.Attempt), state.LastErr)
		outcome = "dead_lettered"
	}

	g.commit(ctx, msg)
	metrics.ConsumerMessages.WithLabelValues(g.name, outcome).Inc()
	metrics.ConsumerMessageDuration.WithLabelValues(g.name).Observe(g.now().Sub(start).Seconds())
}

// deliver runs the handler until it succeeds or the policy gives up. The
// returned error is non-nil only when ctx ended while waiting to retry.
func (g *Group) deliver(ctx context.Context, msg kafka.Message, fields map[string]interface{}) (RetryState, error) {
	b := g.policy.BackOff()
	var state RetryState

	for {
		state.Attempt++
		err := g.invoke(ctx, msg)
		if err == nil {
			state.LastErr = nil
			return state, nil
		}
		state.LastErr = err
		g.errHandler.LogAttempt(withAttempt(fields, state.Attempt), err)

		if !g.errHandler.ShouldRetry(err) {
			return state, nil
		}
		delay := b.NextBackOff()
		if delay == backoff.Stop {
			return state, nil
		}

		state.NextAttemptAt = g.now().Add(delay)
		metrics.ConsumerRetries.WithLabelValues(g.name).Inc()
		if err := g.sleep(ctx, delay); err != nil {
			return state, err
		}
	}
}

// invoke shields the handler from shutdown so a message is never cancelled
// halfway; handlers bound their own external calls.
func (g *Group) invoke(ctx context.Context, msg kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return g.handler.Handle(context.WithoutCancel(ctx), msg)
}

// deadLetter copies msg to the DLQ writer, keeping key, value, headers and
// partition. The write is retried until it succeeds or ctx ends.
func (g *Group) deadLetter(ctx context.Context, msg kafka.Message, state RetryState) error {
	headers := make([]kafka.Header, 0, len(msg.Headers)+4)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: HeaderDLQReason, Value: []byte(state.LastErr.Error())},
		kafka.Header{Key: HeaderDLQGroup, Value: []byte(g.name)},
		kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: HeaderAttempts, Value: []byte(strconv.Itoa(state.Attempt))},
	)
	out := kafka.Message{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Partition: msg.Partition,
	}

	b := g.policy.exponential()
	err := backoff.RetryNotify(func() error {
		return g.dlq.WriteMessages(ctx, out)
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		g.logger.Warn("Dead-letter write failed, retrying", map[string]interface{}{
			"offset":      msg.Offset,
			"nextRetryIn": next.String(),
			"error":       err.Error(),
		})
	})
	if err != nil {
		return err
	}

	metrics.ConsumerDeadLetters.WithLabelValues(g.name).Inc()
	return nil
}

func (g *Group) commit(ctx context.Context, msg kafka.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := g.reader.CommitMessages(ctx, msg); err != nil {
		g.logger.Error("Offset commit failed, message may be redelivered", map[string]interface{}{
			"partition": msg.Partition,
			"offset":    msg.Offset,
			"error":     err.Error(),
		})
	}
}

func withAttempt(fields map[string]interface{}, attempt int) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["attempt"] = attempt
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
