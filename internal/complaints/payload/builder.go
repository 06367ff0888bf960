// Package payload merges defaults, client input and server overrides into
// the enriched complaint document.
package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"reclamations/internal/models"
)

// Whitespace including non-breaking and narrow no-break spaces, which
// locale-formatted amounts carry as thousands separators.
var amountSpaces = regexp.MustCompile(`[\s\x{00A0}\x{202F}]`)

var cardSpaces = regexp.MustCompile(`[\s\x{00A0}\x{202F}]+`)

// Normalized amounts are plain decimals; this keeps "NaN" and "inf" out.
var decimalAmount = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// Build returns defaults, then input, then overrides, later layers winning
// key by key. The Conditions map is merged one level deep across all three
// layers. Amount and card number are normalized after the merge. Build
// never mutates its arguments.
func Build(defaults, input, overrides models.Payload) models.Payload {
	out := deepCopy(defaults)
	if out == nil {
		out = make(models.Payload)
	}

	conditions := copyMap(out.Conditions())
	for _, layer := range []models.Payload{input, overrides} {
		for k, v := range layer {
			if k == models.KeyConditions {
				if m, ok := asMap(v); ok {
					if conditions == nil {
						conditions = make(map[string]interface{}, len(m))
					}
					for ck, cv := range m {
						conditions[ck] = deepCopyValue(cv)
					}
					continue
				}
			}
			out[k] = deepCopyValue(v)
		}
	}
	if conditions != nil {
		out[models.KeyConditions] = conditions
	}

	if v, ok := out[models.KeyAmount]; ok {
		out[models.KeyAmount] = NormalizeAmount(v)
	}
	if s, ok := out[models.KeyCardNumber].(string); ok {
		out[models.KeyCardNumber] = NormalizeCardNumber(s)
	}
	return out
}

// NormalizeAmount turns a locale-formatted amount such as "1.234,56" into
// 1234.56. Values that do not parse are returned unchanged.
func NormalizeAmount(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	f, ok := ParseAmount(s)
	if !ok {
		return v
	}
	return f
}

// ParseAmount strips spaces, drops "." thousands separators and reads ","
// as the decimal separator.
func ParseAmount(s string) (float64, bool) {
	normalized := amountSpaces.ReplaceAllString(s, "")
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	if !decimalAmount.MatchString(normalized) {
		return 0, false
	}
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func NormalizeCardNumber(s string) string {
	return cardSpaces.ReplaceAllString(s, "")
}

// LoadDefaults reads a JSON object of default payload values. A missing
// file yields empty defaults.
func LoadDefaults(path string) (models.Payload, error) {
	if path == "" {
		return models.Payload{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Payload{}, nil
		}
		return nil, fmt.Errorf("failed to read payload defaults: %w", err)
	}
	var out models.Payload
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse payload defaults %s: %w", path, err)
	}
	if out == nil {
		out = models.Payload{}
	}
	return out, nil
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case models.Payload:
		return m, true
	}
	return nil, false
}

func deepCopy(p models.Payload) models.Payload {
	if p == nil {
		return nil
	}
	out := make(models.Payload, len(p))
	for k, v := range p {
		out[k] = deepCopyValue(v)
	}
	return out
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return copyMap(t)
	case models.Payload:
		return copyMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
