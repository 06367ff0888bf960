// Package casemgmt creates complaint records in the external
// case-management list.
package casemgmt

import (
	"context"
	"fmt"
	"strings"

	"reclamations/internal/common/auth"
	"reclamations/internal/common/config"
	"reclamations/internal/common/errors"
	commonhttp "reclamations/internal/common/http"
	"reclamations/internal/models"
)

// Client posts the enriched payload either to a direct create URL or, when
// a site and list id are configured, to the Graph list-items endpoint
// wrapped under "fields".
type Client struct {
	http   *commonhttp.Client
	cfg    config.CaseManagementConfig
	tokens auth.TokenSource
}

func NewClient(httpClient *commonhttp.Client, cfg config.CaseManagementConfig, tokens auth.TokenSource) *Client {
	return &Client{http: httpClient, cfg: cfg, tokens: tokens}
}

// CreateItem returns the created record as a flat map. For Graph responses
// that is the item's fields plus its id.
func (c *Client) CreateItem(ctx context.Context, payload models.Payload) (map[string]interface{}, error) {
	if c.cfg.UseGraph() {
		return c.createGraphItem(ctx, payload)
	}
	if c.cfg.CreateURL == "" {
		return nil, errors.NewConfigurationError("case_management.create_url")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var resp map[string]interface{}
	if err := c.http.PostJSON(ctx, c.cfg.CreateURL, commonhttp.BearerHeaders(token), payload, &resp); err != nil {
		return nil, fmt.Errorf("case-management create failed: %w", err)
	}
	return resp, nil
}

func (c *Client) createGraphItem(ctx context.Context, payload models.Payload) (map[string]interface{}, error) {
	base := strings.TrimRight(c.cfg.GraphBaseURL, "/")
	if base == "" {
		return nil, errors.NewConfigurationError("case_management.graph_base_url")
	}
	endpoint := fmt.Sprintf("%s/sites/%s/lists/%s/items", base, c.cfg.GraphSiteID, c.cfg.GraphListID)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{"fields": payload}
	var resp map[string]interface{}
	if err := c.http.PostJSON(ctx, endpoint, commonhttp.BearerHeaders(token), body, &resp); err != nil {
		return nil, fmt.Errorf("graph create item failed: %w", err)
	}

	fields, ok := resp["fields"].(map[string]interface{})
	if !ok {
		return resp, nil
	}
	if id, ok := resp["id"]; ok && id != nil {
		fields["id"] = id
	}
	return fields, nil
}
