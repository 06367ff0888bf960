// internal/workers/complaints/index-complaint/config.go
package indexcomplaint

import (
	"time"

	"reclamations/internal/common/config"
)

type Config struct {
	Index   string
	Timeout time.Duration
}

func LoadConfig(cfg config.ElasticsearchConfig) *Config {
	c := &Config{
		Index:   cfg.Index,
		Timeout: config.GetDuration(cfg.Timeout),
	}
	if c.Index == "" {
		c.Index = config.DefaultIndex
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}
