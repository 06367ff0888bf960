// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"reclamations/internal/common/errors"
	"reclamations/internal/common/logger"
	"reclamations/internal/common/validation"
	"reclamations/internal/complaints/submission"
	"reclamations/internal/models"

	"github.com/go-chi/chi/v5"
)

type Submitter interface {
	Submit(ctx context.Context, in models.ComplaintInput) (*submission.Result, error)
}

type StatusReader interface {
	Get(trackingID string) (models.SubmissionStatus, bool)
}

type AccountLister interface {
	Accounts(ctx context.Context, clientID string) ([]string, error)
}

// ReadinessCheck reports whether one dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type Handler struct {
	submitter    Submitter
	statuses     StatusReader
	accounts     AccountLister
	checks       map[string]ReadinessCheck
	maxBodyBytes int64
	logger       logger.Logger
}

func NewHandler(submitter Submitter, statuses StatusReader, accounts AccountLister, checks map[string]ReadinessCheck, maxBodyBytes int64, log logger.Logger) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handler{
		submitter:    submitter,
		statuses:     statuses,
		accounts:     accounts,
		checks:       checks,
		maxBodyBytes: maxBodyBytes,
		logger:       log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

type submitResponse struct {
	OK              bool   `json:"ok"`
	TrackingID      string `json:"trackingId"`
	ComplaintNumber string `json:"complaintNumber"`
	Published       bool   `json:"published"`
}

type statusResponse struct {
	TrackingID string    `json:"trackingId"`
	Status     string    `json:"status"`
	CaseNumber string    `json:"caseNumber,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type errorResponse struct {
	OK      bool     `json:"ok"`
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details string   `json:"details,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// SubmitComplaint validates the body, runs the submission and answers 201
// once the case-management record exists.
func (h *Handler) SubmitComplaint(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusRequestEntityTooLarge, errors.NewValidationError("request body too large", nil))
		return
	}

	result := validation.ValidateComplaint(body)
	if !result.Valid {
		msgs := result.GetErrorMessages()
		h.writeError(w, http.StatusBadRequest, errors.NewValidationError("invalid complaint payload", msgs))
		return
	}

	var in models.ComplaintInput
	if err := json.Unmarshal(body, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.NewValidationError(err.Error(), nil))
		return
	}

	res, err := h.submitter.Submit(r.Context(), in)
	if err != nil {
		status := http.StatusBadGateway
		if errors.CodeOf(err) == errors.ErrCodeValidationFailed {
			status = http.StatusBadRequest
		}
		h.writeError(w, status, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, submitResponse{
		OK:              true,
		TrackingID:      res.TrackingID,
		ComplaintNumber: res.CaseNumber,
		Published:       res.PublishErr == nil,
	})
}

func (h *Handler) GetComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "trackingId")
	st, ok := h.statuses.Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, errors.NewTrackingNotFoundError(id))
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{
		TrackingID: st.TrackingID,
		Status:     string(st.Status),
		CaseNumber: st.CaseNumber,
		UpdatedAt:  st.UpdatedAt,
	})
}

// ListAccounts returns the customer's accounts as agency-account-suffix
// strings. The client id may arrive as a string or a number.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes)).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.NewValidationError("request body is not valid JSON", nil))
		return
	}

	clientID := clientIDString(body["clientId"])
	if result := validation.ValidateAccountsRequest(clientID); !result.Valid {
		h.writeError(w, http.StatusBadRequest, errors.NewValidationError("clientId invalide: doit contenir exactement 8 chiffres", result.GetErrorMessages()))
		return
	}

	accounts, err := h.accounts.Accounts(r.Context(), clientID)
	if err != nil {
		h.logger.Error("Account lookup failed", map[string]interface{}{
			"clientId": clientID,
			"error":    err.Error(),
		})
		h.writeError(w, http.StatusBadGateway, err)
		return
	}

	h.logger.Info("Accounts retrieved", map[string]interface{}{"clientId": clientID, "count": len(accounts)})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "accounts": accounts})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Ready runs every readiness check with a short timeout.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not ready",
			"failures": failures,
			"time":     time.Now().Format(time.RFC3339),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func clientIDString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{OK: false, Error: err.Error()}
	if stdErr, ok := errors.AsStandardError(err); ok {
		resp.Error = stdErr.Message
		resp.Code = string(stdErr.Code)
		resp.Details = stdErr.Details
		if fields, ok := stdErr.Metadata["fields"].([]string); ok {
			resp.Errors = fields
		}
	}
	h.writeJSON(w, status, resp)
}
