// internal/workers/complaints/trigger-workflow/handler.go
package triggerworkflow

import (
	"context"
	"encoding/json"

	"reclamations/internal/common/errors"
	"reclamations/internal/common/logger"
	"reclamations/internal/complaints/reference"
	"reclamations/internal/models"

	"github.com/segmentio/kafka-go"
)

const (
	TaskType = "trigger-workflow"
)

type Handler struct {
	config   *Config
	workflow Workflow
	tracker  Tracker
	logger   logger.Logger
}

func NewHandler(config *Config, workflow Workflow, tracker Tracker, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		workflow: workflow,
		tracker:  tracker,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var payload models.Payload
	if err := json.Unmarshal(msg.Value, &payload); err != nil || payload == nil {
		return errors.NewValidationError("complaint event is not a JSON object", nil)
	}

	output, err := h.execute(ctx, payload)
	if err != nil {
		return err
	}

	h.logger.Info("Complaint workflow handled", map[string]interface{}{
		"trackingId": output.TrackingID,
		"caseNumber": output.CaseNumber,
		"called":     output.Called,
		"tracked":    output.Tracked,
		"offset":     msg.Offset,
	})
	return nil
}

// execute skips the automation call when the event already carries a case
// number; otherwise it triggers the flow and takes the number from the
// response.
func (h *Handler) execute(ctx context.Context, payload models.Payload) (*Output, error) {
	out := &Output{TrackingID: payload.TrackingID()}

	caseNumber, ok := reference.Extract(payload)
	if !ok {
		resp, err := h.trigger(ctx, payload)
		if err != nil {
			return nil, err
		}
		out.Called = true
		caseNumber, ok = reference.Extract(resp)
		if !ok {
			h.logger.Warn("Workflow response carries no case number", map[string]interface{}{
				"trackingId": out.TrackingID,
			})
		}
	}
	out.CaseNumber = caseNumber

	if out.TrackingID != "" && caseNumber != "" {
		h.tracker.Complete(out.TrackingID, caseNumber)
		out.Tracked = true
	}
	return out, nil
}

func (h *Handler) trigger(ctx context.Context, payload models.Payload) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	resp, err := h.workflow.Trigger(ctx, payload)
	if err == nil {
		return resp, nil
	}
	if _, ok := errors.AsStandardError(err); ok {
		return nil, err
	}
	return nil, errors.NewWorkflowCallError(err)
}
