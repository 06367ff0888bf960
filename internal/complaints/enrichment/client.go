// Package enrichment looks up the submitting customer and derives the
// display name, agency code and source-account currency for a complaint.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"reclamations/internal/common/auth"
	"reclamations/internal/common/errors"
	commonhttp "reclamations/internal/common/http"
)

var (
	clientIDPattern = regexp.MustCompile(`^\d{8}$`)
	phonePattern    = regexp.MustCompile(`^\d{10}$`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// Query selects the customer either by client id or by phone number.
type Query struct {
	ClientID string
	Phone    string
}

// Key identifies the query in logs and in the cache.
func (q Query) Key() string {
	if q.ClientID != "" {
		return "client:" + q.ClientID
	}
	return "phone:" + q.Phone
}

// SelectQuery applies the lookup selection rule: an 8-digit client id
// first, else a phone number that has exactly 10 digits once non-digits are
// removed. ok is false when neither qualifies.
func SelectQuery(clientID, phone string) (Query, bool) {
	if id := strings.TrimSpace(clientID); clientIDPattern.MatchString(id) {
		return Query{ClientID: id}, true
	}
	if digits := nonDigits.ReplaceAllString(phone, ""); phonePattern.MatchString(digits) {
		return Query{Phone: digits}, true
	}
	return Query{}, false
}

// Lookuper fetches the raw customer lookup response.
type Lookuper interface {
	Lookup(ctx context.Context, q Query) (json.RawMessage, error)
}

// Client calls the account-details API with a bearer token.
type Client struct {
	http   *commonhttp.Client
	url    string
	tokens auth.TokenSource
}

func NewClient(httpClient *commonhttp.Client, url string, tokens auth.TokenSource) *Client {
	return &Client{http: httpClient, url: url, tokens: tokens}
}

func (c *Client) Lookup(ctx context.Context, q Query) (json.RawMessage, error) {
	if c.url == "" {
		return nil, errors.NewConfigurationError("accounts.details_url")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]string{"customerCode": q.ClientID}
	if q.ClientID == "" {
		body = map[string]string{"phoneNumber": q.Phone}
	}

	var raw json.RawMessage
	if err := c.http.PostJSON(ctx, c.url, commonhttp.BearerHeaders(token), body, &raw); err != nil {
		return nil, fmt.Errorf("account details call failed: %w", err)
	}
	return raw, nil
}
