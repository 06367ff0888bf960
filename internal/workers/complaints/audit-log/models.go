// internal/workers/complaints/audit-log/models.go
package auditlog

// Entry is what the audit consumer records for one message.
type Entry struct {
	Key        string   `json:"key"`
	Partition  int      `json:"partition"`
	Offset     int64    `json:"offset"`
	TrackingID string   `json:"trackingId,omitempty"`
	CaseNumber string   `json:"caseNumber,omitempty"`
	Fields     []string `json:"fields"`
}
