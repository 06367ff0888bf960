package triggerworkflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"reclamations/internal/common/config"
	"reclamations/internal/common/errors"
	commonhttp "reclamations/internal/common/http"
	"reclamations/internal/common/logger"
	"reclamations/internal/complaints/tracking"
	"reclamations/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig(url string) *Config {
	return &Config{
		Provider:     "http",
		URL:          url,
		APIKeyHeader: "x-api-key",
		APIKey:       "secret",
		Timeout:      2 * time.Second,
	}
}

func createTestHandler(t *testing.T, cfg *Config, store *tracking.Store) *Handler {
	wf := NewHTTPWorkflow(commonhttp.NewClient(2*time.Second), cfg)
	return NewHandler(cfg, wf, store, logger.NewTestLogger(t))
}

func flowServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func message(t *testing.T, p models.Payload) kafka.Message {
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestHandler_CaseNumberPresentSkipsCall(t *testing.T) {
	var calls int32
	srv := flowServer(t, http.StatusOK, `{}`, &calls)
	store := tracking.NewStore()
	h := createTestHandler(t, createTestConfig(srv.URL), store)

	out, err := h.execute(context.Background(), models.Payload{"TRACKINGID": "trk-1", "complaintNumber": "RC-1001"})
	require.NoError(t, err)

	assert.False(t, out.Called)
	assert.True(t, out.Tracked)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))

	status, ok := store.Get("trk-1")
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, status.Status)
	assert.Equal(t, "RC-1001", status.CaseNumber)
}

func TestHandler_TriggersFlowAndTracksReference(t *testing.T) {
	var calls int32
	srv := flowServer(t, http.StatusOK, `{"ticket":"T-55"}`, &calls)
	store := tracking.NewStore()
	h := createTestHandler(t, createTestConfig(srv.URL), store)

	require.NoError(t, h.Handle(context.Background(), message(t, models.Payload{"TRACKINGID": "trk-2"})))

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	status, ok := store.Get("trk-2")
	require.True(t, ok)
	assert.Equal(t, "T-55", status.CaseNumber)
}

func TestHandler_NoTrackingIDLeavesStoreUntouched(t *testing.T) {
	var calls int32
	srv := flowServer(t, http.StatusOK, `{"ticket":"T-55"}`, &calls)
	store := tracking.NewStore()
	h := createTestHandler(t, createTestConfig(srv.URL), store)

	out, err := h.execute(context.Background(), models.Payload{"MOTIF": "x"})
	require.NoError(t, err)
	assert.True(t, out.Called)
	assert.False(t, out.Tracked)
	assert.Equal(t, 0, store.Len())
}

func TestHandler_ResponseWithoutReference(t *testing.T) {
	var calls int32
	srv := flowServer(t, http.StatusAccepted, ``, &calls)
	store := tracking.NewStore()
	h := createTestHandler(t, createTestConfig(srv.URL), store)

	out, err := h.execute(context.Background(), models.Payload{"TRACKINGID": "trk-3"})
	require.NoError(t, err)
	assert.True(t, out.Called)
	assert.False(t, out.Tracked)
	_, ok := store.Get("trk-3")
	assert.False(t, ok)
}

func TestHandler_FlowFailureIsRetryable(t *testing.T) {
	var calls int32
	srv := flowServer(t, http.StatusBadGateway, `{"error":"down"}`, &calls)
	h := createTestHandler(t, createTestConfig(srv.URL), tracking.NewStore())

	err := h.Handle(context.Background(), message(t, models.Payload{"TRACKINGID": "trk-4"}))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWorkflowCallFailed, errors.CodeOf(err))
	assert.True(t, errors.IsRetryableErrorCode(errors.CodeOf(err)))
}

func TestHandler_MissingURLIsConfigurationError(t *testing.T) {
	h := createTestHandler(t, createTestConfig(""), tracking.NewStore())

	err := h.Handle(context.Background(), message(t, models.Payload{"TRACKINGID": "trk-5"}))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigurationMissing, errors.CodeOf(err))
	assert.False(t, errors.IsRetryableErrorCode(errors.CodeOf(err)))
}

func TestLoadConfig_Defaults(t *testing.T) {
	c := LoadConfig(config.WorkflowConfig{Provider: "http", URL: "http://flow"})
	assert.Equal(t, "x-api-key", c.APIKeyHeader)
	assert.Equal(t, 10*time.Second, c.Timeout)
}
