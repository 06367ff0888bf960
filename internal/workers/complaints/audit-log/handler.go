// internal/workers/complaints/audit-log/handler.go
package auditlog

import (
	"context"
	"encoding/json"
	"sort"

	"reclamations/internal/common/logger"
	"reclamations/internal/complaints/reference"
	"reclamations/internal/models"

	"github.com/segmentio/kafka-go"
)

const (
	TaskType = "audit-log"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Handle logs receipt of a complaint event. It never fails: an undecodable
// value is logged and skipped.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	entry, ok := h.execute(msg)
	if !ok {
		h.logger.Warn("Undecodable complaint event", map[string]interface{}{
			"key":       string(msg.Key),
			"partition": msg.Partition,
			"offset":    msg.Offset,
			"size":      len(msg.Value),
		})
		return nil
	}

	h.logger.Info("Complaint event received", map[string]interface{}{
		"key":        entry.Key,
		"partition":  entry.Partition,
		"offset":     entry.Offset,
		"trackingId": entry.TrackingID,
		"caseNumber": entry.CaseNumber,
		"fields":     entry.Fields,
	})
	return nil
}

func (h *Handler) execute(msg kafka.Message) (*Entry, bool) {
	var payload models.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil || payload == nil {
		return nil, false
	}

	fields := make([]string, 0, len(payload))
	for k := range payload {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	if h.config.MaxLoggedKeys > 0 && len(fields) > h.config.MaxLoggedKeys {
		fields = fields[:h.config.MaxLoggedKeys]
	}

	caseNumber, _ := reference.Extract(payload)
	return &Entry{
		Key:        string(msg.Key),
		Partition:  msg.Partition,
		Offset:     msg.Offset,
		TrackingID: payload.TrackingID(),
		CaseNumber: caseNumber,
		Fields:     fields,
	}, true
}
