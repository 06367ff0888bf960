// internal/models/payload.go
package models

import (
	"strconv"
	"strings"
)

// Payload is the enriched complaint document: the case-management request
// body and the bus message value.
type Payload map[string]interface{}

// String returns the value at key as a trimmed string. Numbers are
// formatted without exponent; other types yield "".
func (p Payload) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

func (p Payload) TrackingID() string {
	return p.String(KeyTrackingID)
}

// Conditions returns the nested Conditions map, or nil.
func (p Payload) Conditions() map[string]interface{} {
	switch m := p[KeyConditions].(type) {
	case map[string]interface{}:
		return m
	case Payload:
		return m
	}
	return nil
}
