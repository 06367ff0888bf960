// internal/workers/complaints/index-complaint/handler.go
package indexcomplaint

import (
	"context"
	"encoding/json"

	"reclamations/internal/common/errors"
	"reclamations/internal/common/logger"
	"reclamations/internal/models"

	"github.com/segmentio/kafka-go"
)

const (
	TaskType = "index-complaint"
)

type Handler struct {
	config  *Config
	indexer Indexer
	logger  logger.Logger
}

func NewHandler(config *Config, indexer Indexer, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Handle writes the complaint to the search index. Re-delivery overwrites
// the same document.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var payload models.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil || payload == nil {
		return errors.NewValidationError("complaint event is not a JSON object", nil)
	}

	output, err := h.execute(ctx, payload)
	if err != nil {
		return err
	}

	h.logger.Info("Complaint indexed", map[string]interface{}{
		"index":      output.Index,
		"documentId": output.DocumentID,
		"offset":     msg.Offset,
	})
	return nil
}

func (h *Handler) execute(ctx context.Context, payload models.Payload) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	id, err := h.indexer.IndexDocument(ctx, h.config.Index, documentID(payload), payload)
	if err != nil {
		return nil, errors.NewIndexingError(err)
	}
	return &Output{Index: h.config.Index, DocumentID: id}, nil
}

// documentID is the tracking id, else the case number, else empty.
func documentID(payload models.Payload) string {
	if id := payload.TrackingID(); id != "" {
		return id
	}
	return payload.String(models.KeyCaseNumber)
}
