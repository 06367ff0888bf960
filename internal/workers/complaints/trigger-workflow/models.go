// internal/workers/complaints/trigger-workflow/models.go
package triggerworkflow

import "context"

// Workflow starts the complaint automation flow and returns its response
// fields.
type Workflow interface {
	Trigger(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error)
}

// Tracker records the case number against a tracking id.
type Tracker interface {
	Complete(trackingID, caseNumber string) bool
}

type Output struct {
	TrackingID string `json:"trackingId,omitempty"`
	CaseNumber string `json:"caseNumber,omitempty"`
	Called     bool   `json:"called"`
	Tracked    bool   `json:"tracked"`
}
