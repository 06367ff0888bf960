// internal/models/complaint.go
package models

import (
	"encoding/json"
	"fmt"
)

// Payload keys the pipeline reads or writes itself. Everything else passes
// through untouched.
const (
	KeyTrackingID      = "TRACKINGID"
	KeyCaseNumber      = "complaintNumber"
	KeyCaseNumberUpper = "NUMERO"
	KeyConditions      = "Conditions"
	KeyCustomerName    = "NOMCLIENT"
	KeyAmount          = "MONTANT"
	KeyConvertedAmount = "MONTANTCONVERTI"
	KeyCardNumber      = "NUMEROCARTE"
	KeyCurrency        = "DEVISE"
	KeyClientAgency    = "AGENCECLIENT"
	KeySourceAccount   = "COMPTESOURCE"
	KeyClientID        = "NUMEROCLIENT"
	KeyPhone           = "TELEPHONECLIENT"
)

// ComplaintInput is the client-supplied complaint form. Keys the form sends
// that have no field here are kept in Extra and survive into the payload.
type ComplaintInput struct {
	Site                     string                 `json:"SITE,omitempty"`
	Zone                     string                 `json:"ZONE,omitempty"`
	Departement              string                 `json:"DEPARTEMENT,omitempty"`
	Domaine                  string                 `json:"DOMAINE,omitempty"`
	AWSTemplateFormatVersion *string                `json:"AWSTemplateFormatVersion,omitempty"`
	TypeReclamation          string                 `json:"TYPERECLAMATION,omitempty"`
	Channel                  string                 `json:"CANALUTILISE,omitempty"`
	MotifBCC                 *string                `json:"MOTIFBCC,omitempty"`
	ClientAgency             string                 `json:"AGENCECLIENT,omitempty"`
	ClientID                 string                 `json:"NUMEROCLIENT,omitempty"`
	Conditions               map[string]interface{} `json:"Conditions,omitempty"`
	Phone                    string                 `json:"TELEPHONECLIENT,omitempty"`
	SourceAccount            string                 `json:"COMPTESOURCE,omitempty"`
	TransactionDate          string                 `json:"DATETRANSACTION,omitempty"`
	CardNumber               string                 `json:"NUMEROCARTE,omitempty"`
	Amount                   interface{}            `json:"MONTANT,omitempty"`
	ConvertedAmount          string                 `json:"MONTANTCONVERTI,omitempty"`
	Currency                 string                 `json:"DEVISE,omitempty"`
	Reversal                 *bool                  `json:"EXTOURNE,omitempty"`
	BranchManager            string                 `json:"GERANTAGENCE,omitempty"`
	Motif                    string                 `json:"MOTIF,omitempty"`
	Description              string                 `json:"DESCRIPTION,omitempty"`
	AvisMotive               *string                `json:"AVISMOTIVE,omitempty"`

	Extra map[string]interface{} `json:"-"`
}

var knownInputKeys = map[string]struct{}{
	"SITE": {}, "ZONE": {}, "DEPARTEMENT": {}, "DOMAINE": {},
	"AWSTemplateFormatVersion": {}, "TYPERECLAMATION": {}, "CANALUTILISE": {},
	"MOTIFBCC": {}, "AGENCECLIENT": {}, "NUMEROCLIENT": {}, "Conditions": {},
	"TELEPHONECLIENT": {}, "COMPTESOURCE": {}, "DATETRANSACTION": {},
	"NUMEROCARTE": {}, "MONTANT": {}, "MONTANTCONVERTI": {}, "DEVISE": {},
	"EXTOURNE": {}, "GERANTAGENCE": {}, "MOTIF": {}, "DESCRIPTION": {},
	"AVISMOTIVE": {},
}

// complaintFields breaks the UnmarshalJSON recursion.
type complaintFields ComplaintInput

func (c *ComplaintInput) UnmarshalJSON(data []byte) error {
	var fields complaintFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		if _, known := knownInputKeys[key]; known {
			continue
		}
		var v interface{}
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		if fields.Extra == nil {
			fields.Extra = make(map[string]interface{})
		}
		fields.Extra[key] = v
	}

	*c = ComplaintInput(fields)
	return nil
}

// ToPayload flattens the form into the key/value document the builder
// merges. Unset fields are omitted and Extra keys never shadow typed ones.
func (c ComplaintInput) ToPayload() (Payload, error) {
	data, err := json.Marshal(complaintFields(c))
	if err != nil {
		return nil, err
	}
	out := make(Payload)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out, nil
}
