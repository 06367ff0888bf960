package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]interface{}
		want string
		ok   bool
	}{
		{"complaintNumber first", map[string]interface{}{"id": "42", "complaintNumber": "RC-1001"}, "RC-1001", true},
		{"numero before NUMERO", map[string]interface{}{"NUMERO": "B", "numero": "A"}, "A", true},
		{"blank skipped", map[string]interface{}{"complaintNumber": "  ", "reference": "REF-9"}, "REF-9", true},
		{"numeric id", map[string]interface{}{"id": float64(1234)}, "1234", true},
		{"ticket", map[string]interface{}{"ticket": "T-1"}, "T-1", true},
		{"bool ignored", map[string]interface{}{"id": true}, "", false},
		{"nothing", map[string]interface{}{"status": "ok"}, "", false},
		{"nil map", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
