package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reclamations/internal/common/errors"
	"reclamations/internal/common/logger"
	"reclamations/internal/complaints/submission"
	"reclamations/internal/complaints/tracking"
	"reclamations/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	got    models.ComplaintInput
	result *submission.Result
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, in models.ComplaintInput) (*submission.Result, error) {
	f.got = in
	return f.result, f.err
}

type fakeAccounts struct {
	clientID string
	accounts []string
	err      error
}

func (f *fakeAccounts) Accounts(_ context.Context, clientID string) ([]string, error) {
	f.clientID = clientID
	return f.accounts, f.err
}

type testServer struct {
	submitter *fakeSubmitter
	accounts  *fakeAccounts
	store     *tracking.Store
	checks    map[string]ReadinessCheck
	srv       *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{
		submitter: &fakeSubmitter{result: &submission.Result{TrackingID: "trk-1", CaseNumber: "RC-1001", State: submission.Completed}},
		accounts:  &fakeAccounts{accounts: []string{"00010-1234567-01"}},
		store:     tracking.NewStore(),
		checks:    map[string]ReadinessCheck{},
	}
	log := logger.NewTestLogger(t)
	h := NewHandler(ts.submitter, ts.store, ts.accounts, ts.checks, 0, log)
	ts.srv = httptest.NewServer(NewRouter(h, []string{"http://localhost:5173"}, log))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) post(t *testing.T, path, body string) (*http.Response, map[string]interface{}) {
	resp, err := http.Post(ts.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (ts *testServer) get(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	resp, err := http.Get(ts.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestSubmitComplaint_Created(t *testing.T) {
	ts := newTestServer(t)

	resp, out := ts.post(t, "/api/complaints", `{"MOTIF":"Retrait non servi","NUMEROCLIENT":"12345678","MONTANT":"1.234,56","CANAL_ORIGINE":"GAB"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, "trk-1", out["trackingId"])
	assert.Equal(t, "RC-1001", out["complaintNumber"])
	assert.Equal(t, true, out["published"])

	assert.Equal(t, "12345678", ts.submitter.got.ClientID)
	assert.Equal(t, "1.234,56", ts.submitter.got.Amount)
	assert.Equal(t, "GAB", ts.submitter.got.Extra["CANAL_ORIGINE"])
}

func TestSubmitComplaint_ValidationFailure(t *testing.T) {
	ts := newTestServer(t)

	resp, out := ts.post(t, "/api/complaints", `{"NUMEROCLIENT":"123"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, out["ok"])
	assert.Equal(t, "VALIDATION_FAILED", out["code"])
	errs, ok := out["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 2)
}

func TestSubmitComplaint_RecordFailureIsBadGateway(t *testing.T) {
	ts := newTestServer(t)
	ts.submitter.result = nil
	ts.submitter.err = errors.NewRecordCreationError(fmt.Errorf("503"))

	resp, out := ts.post(t, "/api/complaints", `{"MOTIF":"x"}`)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "RECORD_CREATION_FAILED", out["code"])
}

func TestSubmitComplaint_PublishFailureStillCreated(t *testing.T) {
	ts := newTestServer(t)
	ts.submitter.result.PublishErr = fmt.Errorf("broker down")

	resp, out := ts.post(t, "/api/complaints", `{"MOTIF":"x"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, false, out["published"])
}

func TestGetComplaintStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.store.MarkPending("trk-9")
	ts.store.Complete("trk-9", "RC-9")

	resp, out := ts.get(t, "/api/complaints/trk-9")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", out["status"])
	assert.Equal(t, "RC-9", out["caseNumber"])

	resp, out = ts.get(t, "/api/complaints/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "TRACKING_NOT_FOUND", out["code"])
}

func TestListAccounts(t *testing.T) {
	ts := newTestServer(t)

	resp, out := ts.post(t, "/api/accounts", `{"clientId":12345678}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, []interface{}{"00010-1234567-01"}, out["accounts"])
	assert.Equal(t, "12345678", ts.accounts.clientID)
}

func TestListAccounts_InvalidClientID(t *testing.T) {
	ts := newTestServer(t)

	resp, out := ts.post(t, "/api/accounts", `{"clientId":"12"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "clientId invalide: doit contenir exactement 8 chiffres", out["details"])
	assert.Empty(t, ts.accounts.clientID)
}

func TestListAccounts_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.accounts.err = errors.NewConfigurationError("accounts.details_url")

	resp, out := ts.post(t, "/api/accounts", `{"clientId":"12345678"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "CONFIGURATION_MISSING", out["code"])
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	resp, out := ts.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", out["status"])

	resp, _ = ts.get(t, "/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ts.checks["elasticsearch"] = func(context.Context) error { return fmt.Errorf("connection refused") }
	resp, out = ts.get(t, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"elasticsearch": "connection refused"}, out["failures"])

	ts.checks["zeebe"] = func(context.Context) error { return fmt.Errorf("zeebe health check failed: unavailable") }
	resp, out = ts.get(t, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{
		"elasticsearch": "connection refused",
		"zeebe":         "zeebe health check failed: unavailable",
	}, out["failures"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
