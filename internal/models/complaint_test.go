package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplaintInput_UnknownKeysSurvive(t *testing.T) {
	body := `{
		"NUMEROCLIENT": "12345678",
		"MONTANT": "1.234,56",
		"EXTOURNE": true,
		"Conditions": {"CANAL": "GAB"},
		"CUSTOMFIELD": "kept",
		"NESTED": {"a": 1}
	}`

	var in ComplaintInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	assert.Equal(t, "12345678", in.ClientID)
	assert.Equal(t, "1.234,56", in.Amount)
	require.NotNil(t, in.Reversal)
	assert.True(t, *in.Reversal)
	assert.Equal(t, "kept", in.Extra["CUSTOMFIELD"])
	assert.NotContains(t, in.Extra, "NUMEROCLIENT")

	p, err := in.ToPayload()
	require.NoError(t, err)
	assert.Equal(t, "12345678", p["NUMEROCLIENT"])
	assert.Equal(t, "kept", p["CUSTOMFIELD"])
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, p["NESTED"])
	assert.Equal(t, map[string]interface{}{"CANAL": "GAB"}, p.Conditions())
	assert.NotContains(t, p, "SITE", "unset fields are omitted")
}

func TestComplaintInput_ExtraDoesNotShadowTypedField(t *testing.T) {
	in := ComplaintInput{
		Motif: "typed",
		Extra: map[string]interface{}{"MOTIF": "extra"},
	}
	p, err := in.ToPayload()
	require.NoError(t, err)
	assert.Equal(t, "typed", p["MOTIF"])
}

func TestPayload_String(t *testing.T) {
	p := Payload{"a": " x ", "b": float64(1001), "c": true}
	assert.Equal(t, "x", p.String("a"))
	assert.Equal(t, "1001", p.String("b"))
	assert.Equal(t, "", p.String("c"))
	assert.Equal(t, "", p.String("missing"))
}

func TestAccount_Key(t *testing.T) {
	a := Account{AgencyCode: "00010", AccountNumber: "1234567", Suffix: "01"}
	assert.Equal(t, "00010-1234567-01", a.Key())
}
