// internal/common/auth/token.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"reclamations/internal/common/config"
	"reclamations/internal/common/errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenSource yields bearer tokens for outbound calls to the lookup and
// case-management APIs.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// tokenTimeout bounds a single request to the token endpoint.
const tokenTimeout = 10 * time.Second

// ClientCredentials fetches tokens with the OAuth2 client-credentials grant.
// oauth2.ReuseTokenSource caches the token and refreshes it shortly before
// expiry.
type ClientCredentials struct {
	conf   *clientcredentials.Config
	source oauth2.TokenSource
}

func NewClientCredentials(cfg config.AuthConfig) *ClientCredentials {
	conf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	// The source outlives any single request, so it gets its own context.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: tokenTimeout})
	return &ClientCredentials{
		conf:   conf,
		source: oauth2.ReuseTokenSource(nil, conf.TokenSource(ctx)),
	}
}

// Token returns a valid access token. A missing token endpoint or client id
// is a configuration error and is never retried.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	if c.conf.TokenURL == "" {
		return "", errors.NewConfigurationError("auth.token_url")
	}
	if c.conf.ClientID == "" {
		return "", errors.NewConfigurationError("auth.client_id")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tok, err := c.source.Token()
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	return tok.AccessToken, nil
}

// Static always returns the same token. Empty means no Authorization header.
type Static string

func (s Static) Token(context.Context) (string, error) {
	return string(s), nil
}
