package enrichment

import (
	"strings"

	"reclamations/internal/models"
)

var currencyLabels = map[string]string{
	"181": "CDF",
	"840": "USD",
	"955": "EURO",
	"826": "GBP",
}

// CurrencyLabel maps a numeric currency code to its label. Unmapped codes
// report false.
func CurrencyLabel(code string) (string, bool) {
	label, ok := currencyLabels[strings.TrimSpace(code)]
	return label, ok
}

// Resolution is what a customer detail contributes to the payload.
type Resolution struct {
	DisplayName string
	AgencyCode  string
	// Currency is set only when the source account matched and its code is
	// mapped.
	Currency string
	// Conflict is true when Currency differs from the submitted currency.
	Conflict bool
}

// Resolve derives name, agency and currency for the selected source
// account. The agency comes from the first account that has one; the
// currency only from the first account whose key equals sourceAccount.
func Resolve(detail models.CustomerDetail, sourceAccount, submittedCurrency string) Resolution {
	res := Resolution{DisplayName: detail.DisplayName}

	for _, acc := range detail.Accounts {
		if acc.AgencyCode != "" {
			res.AgencyCode = acc.AgencyCode
			break
		}
	}

	selected := strings.TrimSpace(sourceAccount)
	if selected == "" {
		return res
	}
	for _, acc := range detail.Accounts {
		if acc.Key() != selected {
			continue
		}
		if label, ok := CurrencyLabel(acc.CurrencyCode); ok {
			res.Currency = label
			submitted := strings.TrimSpace(submittedCurrency)
			res.Conflict = submitted != "" && !strings.EqualFold(submitted, label)
		}
		break
	}
	return res
}
