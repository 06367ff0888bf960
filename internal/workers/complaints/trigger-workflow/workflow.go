// internal/workers/complaints/trigger-workflow/workflow.go
package triggerworkflow

import (
	"context"

	"reclamations/internal/common/errors"
	commonhttp "reclamations/internal/common/http"
)

// HTTPWorkflow posts the payload to an automation flow endpoint.
type HTTPWorkflow struct {
	client *commonhttp.Client
	config *Config
}

func NewHTTPWorkflow(client *commonhttp.Client, config *Config) *HTTPWorkflow {
	return &HTTPWorkflow{client: client, config: config}
}

func (w *HTTPWorkflow) Trigger(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	if w.config.URL == "" {
		return nil, errors.NewConfigurationError("workflow.url")
	}

	var headers map[string]string
	if w.config.APIKey != "" {
		headers = map[string]string{w.config.APIKeyHeader: w.config.APIKey}
	}

	var out map[string]interface{}
	if err := w.client.PostJSON(ctx, w.config.URL, headers, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
