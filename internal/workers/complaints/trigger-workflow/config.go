// internal/workers/complaints/trigger-workflow/config.go
package triggerworkflow

import (
	"time"

	"reclamations/internal/common/config"
)

type Config struct {
	Provider     string
	URL          string
	APIKeyHeader string
	APIKey       string
	Timeout      time.Duration
}

func LoadConfig(cfg config.WorkflowConfig) *Config {
	c := &Config{
		Provider:     cfg.Provider,
		URL:          cfg.URL,
		APIKeyHeader: cfg.APIKeyHeader,
		APIKey:       cfg.APIKey,
		Timeout:      config.GetDuration(cfg.Timeout),
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.APIKeyHeader == "" {
		c.APIKeyHeader = "x-api-key"
	}
	return c
}
