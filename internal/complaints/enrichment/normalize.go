package enrichment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"reclamations/internal/models"
)

// NameMarker separates the holder name from the rest of an account label
// in flat lookup responses, e.g. "JEAN MUKENDI V/C USD COURANT".
const NameMarker = "V/C"

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// structured response: {"cutomerDetail": {"customerName": ..., "accountList": [...]}}
type structuredDetail struct {
	CustomerName string `json:"customerName"`
	AccountList  []struct {
		AgencyCode    flexString `json:"agencyCode"`
		AccountNumber flexString `json:"accountNumber"`
		Suffix        flexString `json:"suffix"`
		CurrencyCode  flexString `json:"currencyCode"`
	} `json:"accountList"`
}

// flat response entries: either a bare "agency-account-suffix" string or an
// object carrying the account string, its label and its currency code.
type flatEntry struct {
	Account      string     `json:"account"`
	Label        string     `json:"label"`
	CurrencyCode flexString `json:"currencyCode"`
}

func (e *flatEntry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &e.Account)
	}
	type plain flatEntry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = flatEntry(p)
	return nil
}

type flatResponse struct {
	Accounts     []flatEntry `json:"accounts"`
	CurrencyCode flexString  `json:"currencyCode"`
}

// Normalize converts either lookup response shape into a CustomerDetail.
// The structured shape is recognized by a detail object holding an
// accountList or a customerName and is checked first; anything else is read as the flat
// shape. An empty body yields an empty detail.
func Normalize(raw []byte) (models.CustomerDetail, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.CustomerDetail{}, nil
	}

	if detail, ok, err := normalizeStructured(raw); ok || err != nil {
		return detail, err
	}
	return normalizeFlat(raw)
}

func normalizeStructured(raw []byte) (models.CustomerDetail, bool, error) {
	if raw[0] != '{' {
		return models.CustomerDetail{}, false, nil
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return models.CustomerDetail{}, false, fmt.Errorf("invalid lookup response: %w", err)
	}

	var detailRaw json.RawMessage
	for _, key := range []string{"cutomerDetail", "customerDetail"} {
		if v, ok := root[key]; ok {
			detailRaw = v
			break
		}
	}
	if detailRaw == nil {
		return models.CustomerDetail{}, false, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(detailRaw, &probe); err != nil {
		return models.CustomerDetail{}, false, nil
	}
	_, hasAccounts := probe["accountList"]
	_, hasName := probe["customerName"]
	if !hasAccounts && !hasName {
		return models.CustomerDetail{}, false, nil
	}

	var sd structuredDetail
	if err := json.Unmarshal(detailRaw, &sd); err != nil {
		return models.CustomerDetail{}, true, fmt.Errorf("invalid customer detail: %w", err)
	}

	out := models.CustomerDetail{DisplayName: strings.TrimSpace(sd.CustomerName)}
	for _, a := range sd.AccountList {
		out.Accounts = append(out.Accounts, models.Account{
			AgencyCode:    string(a.AgencyCode),
			AccountNumber: string(a.AccountNumber),
			Suffix:        string(a.Suffix),
			CurrencyCode:  string(a.CurrencyCode),
		})
	}
	return out, true, nil
}

func normalizeFlat(raw []byte) (models.CustomerDetail, error) {
	var resp flatResponse
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &resp.Accounts); err != nil {
			return models.CustomerDetail{}, fmt.Errorf("invalid account list: %w", err)
		}
	case '{':
		if err := json.Unmarshal(raw, &resp); err != nil {
			return models.CustomerDetail{}, fmt.Errorf("invalid account list: %w", err)
		}
	default:
		return models.CustomerDetail{}, fmt.Errorf("unrecognized lookup response")
	}

	var out models.CustomerDetail
	labels := make([]string, 0, len(resp.Accounts))
	for _, e := range resp.Accounts {
		acc, ok := parseAccountKey(e.Account)
		if !ok {
			continue
		}
		acc.CurrencyCode = string(e.CurrencyCode)
		if acc.CurrencyCode == "" {
			acc.CurrencyCode = string(resp.CurrencyCode)
		}
		out.Accounts = append(out.Accounts, acc)
		labels = append(labels, e.Label)
	}
	out.DisplayName = inferName(labels)
	return out, nil
}

// parseAccountKey splits "agency-account-suffix".
func parseAccountKey(s string) (models.Account, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return models.Account{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return models.Account{}, false
		}
	}
	return models.Account{AgencyCode: parts[0], AccountNumber: parts[1], Suffix: parts[2]}, true
}

// inferName truncates each label at NameMarker. The name is accepted only
// when every label carries the marker and all prefixes agree.
func inferName(labels []string) string {
	name := ""
	for _, l := range labels {
		idx := strings.Index(l, NameMarker)
		if idx < 0 {
			return ""
		}
		candidate := strings.Join(strings.Fields(l[:idx]), " ")
		if candidate == "" {
			return ""
		}
		if name == "" {
			name = candidate
			continue
		}
		if !strings.EqualFold(name, candidate) {
			return ""
		}
	}
	return name
}
