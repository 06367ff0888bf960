// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultTopic         = "complaints_raw"
	DefaultDLQSuffix     = ".DLQ"
	DefaultAuditGroup    = "reclamations-audit"
	DefaultIndexerGroup  = "reclamations-indexer"
	DefaultWorkflowGroup = "reclamations-pa-worker"
	DefaultIndex         = "reclamations"
	DefaultDepartement   = "Direction IT / Développement Applicatif"
	DefaultCallTimeout   = 10000
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on
// top and lets environment variables override any key (kafka.topic ->
// KAFKA_TOPIC).
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return decode(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "complaints-service"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultTopic
	}
	if cfg.Kafka.DLQSuffix == "" {
		cfg.Kafka.DLQSuffix = DefaultDLQSuffix
	}
	if cfg.Kafka.Partitions == 0 {
		cfg.Kafka.Partitions = 3
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultCallTimeout
	}
	if cfg.Kafka.Groups.Audit == "" {
		cfg.Kafka.Groups.Audit = DefaultAuditGroup
	}
	if cfg.Kafka.Groups.Indexer == "" {
		cfg.Kafka.Groups.Indexer = DefaultIndexerGroup
	}
	if cfg.Kafka.Groups.Workflow == "" {
		cfg.Kafka.Groups.Workflow = DefaultWorkflowGroup
	}

	if cfg.Retry.InitialInterval == 0 {
		cfg.Retry.InitialInterval = 1000
	}
	if cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = 2
	}
	if cfg.Retry.MaxInterval == 0 {
		cfg.Retry.MaxInterval = 8000
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 3
	}

	if cfg.Accounts.Timeout == 0 {
		cfg.Accounts.Timeout = DefaultCallTimeout
	}
	if cfg.CaseManagement.Timeout == 0 {
		cfg.CaseManagement.Timeout = DefaultCallTimeout
	}
	if cfg.CaseManagement.GraphBaseURL == "" {
		cfg.CaseManagement.GraphBaseURL = "https://graph.microsoft.com/v1.0"
	}

	if cfg.Workflow.Provider == "" {
		cfg.Workflow.Provider = "http"
	}
	if cfg.Workflow.Timeout == 0 {
		cfg.Workflow.Timeout = DefaultCallTimeout
	}
	if cfg.Workflow.APIKeyHeader == "" {
		cfg.Workflow.APIKeyHeader = "x-api-key"
	}

	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = DefaultIndex
	}
	if cfg.Database.Elasticsearch.Timeout == 0 {
		cfg.Database.Elasticsearch.Timeout = DefaultCallTimeout
	}

	if cfg.Defaults.Departement == "" {
		cfg.Defaults.Departement = DefaultDepartement
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig only checks what the process cannot start without.
// Missing downstream endpoints surface later as configuration errors on the
// call that needs them.
func validateConfig(cfg *Config) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if cfg.Kafka.Partitions < 1 {
		return fmt.Errorf("kafka.partitions must be positive")
	}
	if cfg.Retry.Multiplier < 1 {
		return fmt.Errorf("retry.multiplier must be >= 1")
	}
	switch cfg.Workflow.Provider {
	case "http", "zeebe":
	default:
		return fmt.Errorf("workflow.provider must be http or zeebe, got %q", cfg.Workflow.Provider)
	}
	return nil
}
