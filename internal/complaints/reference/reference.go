// Package reference extracts a case or complaint number from an external
// response or an event payload.
package reference

import (
	"strconv"
	"strings"
)

// Keys is the lookup order for a case number.
var Keys = []string{"complaintNumber", "numero", "NUMERO", "reference", "ticket", "id"}

// Extract returns the first non-blank string or numeric value under Keys.
func Extract(m map[string]interface{}) (string, bool) {
	for _, k := range Keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int:
			return strconv.Itoa(v), true
		case int64:
			return strconv.FormatInt(v, 10), true
		}
	}
	return "", false
}
