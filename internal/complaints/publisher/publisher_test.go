package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"reclamations/internal/common/errors"
	"reclamations/internal/common/logger"
	"reclamations/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs     []kafka.Message
	err      error
	deadline bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublish_KeyedByTrackingID(t *testing.T) {
	w := &fakeWriter{}
	p := New(w, time.Second, logger.NewTestLogger(t))

	payload := models.Payload{"TRACKINGID": "trk-1", "complaintNumber": "RC-1001"}
	require.NoError(t, p.Publish(context.Background(), "complaints_raw", payload))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "trk-1", string(w.msgs[0].Key))
	assert.Equal(t, "complaints_raw", w.msgs[0].Topic)
	assert.True(t, w.deadline, "write is bounded by a timeout")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "RC-1001", decoded["complaintNumber"])
}

func TestPublish_ErrorIsSurfacedNotRetried(t *testing.T) {
	w := &fakeWriter{err: fmt.Errorf("broker unavailable")}
	p := New(w, time.Second, logger.NewNoOpLogger())

	err := p.Publish(context.Background(), "complaints_raw", models.Payload{"TRACKINGID": "trk-2"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePublishFailed, errors.CodeOf(err))
	assert.Empty(t, w.msgs)
}

func TestPublish_TopicMustMatchBoundWriter(t *testing.T) {
	w := &kafka.Writer{Topic: "complaints_raw"}
	p := New(w, time.Second, logger.NewNoOpLogger())

	err := p.Publish(context.Background(), "complaints_other", models.Payload{"TRACKINGID": "trk-3"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePublishFailed, errors.CodeOf(err))
	assert.Contains(t, err.Error(), `bound to topic "complaints_raw"`)
}
