// internal/workers/complaints/audit-log/config.go
package auditlog

type Config struct {
	// MaxLoggedKeys bounds how many payload keys are listed per entry.
	MaxLoggedKeys int
}

func LoadConfig() *Config {
	return &Config{
		MaxLoggedKeys: 64,
	}
}
