// internal/models/customer.go
package models

import "time"

// Account is one customer account as returned by the lookup API.
type Account struct {
	AgencyCode    string `json:"agencyCode"`
	AccountNumber string `json:"accountNumber"`
	Suffix        string `json:"suffix"`
	CurrencyCode  string `json:"currencyCode,omitempty"`
}

// Key is the agency-account-suffix form the complaint form submits as
// source account.
func (a Account) Key() string {
	return a.AgencyCode + "-" + a.AccountNumber + "-" + a.Suffix
}

// CustomerDetail is the normalized lookup result. The zero value means no
// enrichment.
type CustomerDetail struct {
	DisplayName string    `json:"displayName,omitempty"`
	Accounts    []Account `json:"accounts,omitempty"`
}

func (d CustomerDetail) IsEmpty() bool {
	return d.DisplayName == "" && len(d.Accounts) == 0
}

type TrackingState string

const (
	StatusPending   TrackingState = "pending"
	StatusCompleted TrackingState = "completed"
)

// SubmissionStatus correlates a tracking id with its case number.
type SubmissionStatus struct {
	TrackingID string        `json:"trackingId"`
	Status     TrackingState `json:"status"`
	CaseNumber string        `json:"caseNumber,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
