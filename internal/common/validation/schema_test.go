package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateComplaint_Valid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"minimal", `{"MOTIF":"Retrait non servi"}`},
		{"full", `{"MOTIF":"x","NUMEROCLIENT":"12345678","TELEPHONECLIENT":"0812345678","DATETRANSACTION":"1-12-202","MONTANT":"1.234,56","EXTOURNE":true}`},
		{"numeric amount", `{"MOTIF":"x","MONTANT":1234.56}`},
		{"nulls allowed", `{"MOTIF":"x","NUMEROCLIENT":null,"TELEPHONECLIENT":null}`},
		{"unknown keys pass", `{"MOTIF":"x","CANAL_ORIGINE":"GAB"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateComplaint([]byte(tt.body))
			assert.True(t, res.Valid, "%v", res.GetErrorMessages())
		})
	}
}

func TestValidateComplaint_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		code  string
	}{
		{"missing motif", `{"NUMEROCLIENT":"12345678"}`, "MOTIF", "required"},
		{"blank motif", `{"MOTIF":"   "}`, "MOTIF", "pattern"},
		{"short client id", `{"MOTIF":"x","NUMEROCLIENT":"1234"}`, "NUMEROCLIENT", "pattern"},
		{"phone with letters", `{"MOTIF":"x","TELEPHONECLIENT":"08123abcde"}`, "TELEPHONECLIENT", "pattern"},
		{"bad date", `{"MOTIF":"x","DATETRANSACTION":"32-01-202"}`, "DATETRANSACTION", "pattern"},
		{"amount as bool", `{"MOTIF":"x","MONTANT":true}`, "MONTANT", "invalid_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateComplaint([]byte(tt.body))
			require.False(t, res.Valid)
			errs := res.GetErrorsForField(tt.field)
			require.NotEmpty(t, errs, "%v", res.GetErrorMessages())
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}
}

func TestValidateComplaint_FieldMessages(t *testing.T) {
	res := ValidateComplaint([]byte(`{"MOTIF":"x","NUMEROCLIENT":"1"}`))
	require.True(t, res.HasErrors("NUMEROCLIENT"))
	assert.Equal(t, "NUMEROCLIENT doit contenir exactement 8 chiffres", res.GetErrorsForField("NUMEROCLIENT")[0].Message)
}

func TestValidateComplaint_MalformedJSON(t *testing.T) {
	res := ValidateComplaint([]byte(`{"MOTIF":`))
	require.False(t, res.Valid)
	assert.Equal(t, "invalid_json", res.Errors[0].Code)
}

func TestValidateAccountsRequest(t *testing.T) {
	assert.True(t, ValidateAccountsRequest("12345678").Valid)

	res := ValidateAccountsRequest("123")
	require.False(t, res.Valid)
	assert.True(t, res.HasErrors("clientId"))
	assert.Equal(t, "clientId doit contenir exactement 8 chiffres", res.Errors[0].Message)

	assert.False(t, ValidateAccountsRequest("").Valid)
}
