// internal/common/validation/schema.go
package validation

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed complaint.schema.json
	complaintSchemaJSON []byte
	//go:embed accounts.schema.json
	accountsSchemaJSON []byte

	complaintSchema = mustSchema(complaintSchemaJSON)
	accountsSchema  = mustSchema(accountsSchemaJSON)
)

// patternMessages replace the generic pattern error for known fields.
var patternMessages = map[string]string{
	"NUMEROCLIENT":    "NUMEROCLIENT doit contenir exactement 8 chiffres",
	"TELEPHONECLIENT": "TELEPHONECLIENT doit contenir exactement 10 chiffres",
	"DATETRANSACTION": "DATETRANSACTION doit être au format d-mm-yyy",
	"MOTIF":           "MOTIF ne doit pas être vide",
	"clientId":        "clientId doit contenir exactement 8 chiffres",
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func mustSchema(raw []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("validation: invalid embedded schema: %v", err))
	}
	return s
}

// ValidateComplaint checks a raw submission body. Malformed JSON is reported
// as a single root error.
func ValidateComplaint(body []byte) *ValidationResult {
	return validate(complaintSchema, gojsonschema.NewBytesLoader(body))
}

// ValidateAccountsRequest checks the client id of a POST /api/accounts
// body, already rendered as a string.
func ValidateAccountsRequest(clientID string) *ValidationResult {
	return validate(accountsSchema, gojsonschema.NewGoLoader(map[string]interface{}{"clientId": clientID}))
}

func validate(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) *ValidationResult {
	result, err := schema.Validate(doc)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: "request body is not valid JSON",
				Code:    "invalid_json",
			}},
		}
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, toValidationError(desc))
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return &ValidationResult{Valid: false, Errors: errs}
}

func toValidationError(desc gojsonschema.ResultError) ValidationError {
	field := desc.Field()
	if desc.Type() == "required" {
		if p, ok := desc.Details()["property"].(string); ok {
			field = p
		}
	}

	msg := desc.Description()
	if desc.Type() == "pattern" {
		if custom, ok := patternMessages[field]; ok {
			msg = custom
		}
	}
	return ValidationError{Field: field, Message: msg, Code: desc.Type()}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
