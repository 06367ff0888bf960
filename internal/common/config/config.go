// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Server         ServerConfig         `mapstructure:"server"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Retry          RetryConfig          `mapstructure:"retry"`
	Accounts       AccountsConfig       `mapstructure:"accounts"`
	CaseManagement CaseManagementConfig `mapstructure:"case_management"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Workflow       WorkflowConfig       `mapstructure:"workflow"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Defaults       DefaultsConfig       `mapstructure:"defaults"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Addr            string   `mapstructure:"addr"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
}

// KafkaConfig describes the complaint topic and the three consumer groups
// reading it.
type KafkaConfig struct {
	Brokers      []string    `mapstructure:"brokers"`
	Topic        string      `mapstructure:"topic"`
	DLQSuffix    string      `mapstructure:"dlq_suffix"`
	Partitions   int         `mapstructure:"partitions"`
	WriteTimeout int         `mapstructure:"write_timeout"` // milliseconds
	Groups       KafkaGroups `mapstructure:"groups"`
}

type KafkaGroups struct {
	Audit    string `mapstructure:"audit"`
	Indexer  string `mapstructure:"indexer"`
	Workflow string `mapstructure:"workflow"`
}

// DLQTopic returns the dead-letter topic for the complaint topic.
func (k KafkaConfig) DLQTopic() string {
	return k.Topic + k.DLQSuffix
}

type RetryConfig struct {
	InitialInterval int     `mapstructure:"initial_interval"` // milliseconds
	Multiplier      float64 `mapstructure:"multiplier"`
	MaxInterval     int     `mapstructure:"max_interval"` // milliseconds
	MaxRetries      int     `mapstructure:"max_retries"`
}

// AccountsConfig points at the customer/account lookup API.
type AccountsConfig struct {
	DetailsURL string `mapstructure:"details_url"`
	Timeout    int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL   int    `mapstructure:"cache_ttl"` // seconds, 0 disables the cache
}

// CaseManagementConfig selects between a direct create URL and the
// structured-list (Graph) API. The Graph path wins when site and list ids
// are both set.
type CaseManagementConfig struct {
	CreateURL    string `mapstructure:"create_url"`
	GraphBaseURL string `mapstructure:"graph_base_url"`
	GraphSiteID  string `mapstructure:"graph_site_id"`
	GraphListID  string `mapstructure:"graph_list_id"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

func (c CaseManagementConfig) UseGraph() bool {
	return c.GraphSiteID != "" && c.GraphListID != ""
}

// AuthConfig holds the client-credentials grant used for outbound calls.
type AuthConfig struct {
	TokenURL     string   `mapstructure:"token_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
}

type WorkflowConfig struct {
	Provider     string      `mapstructure:"provider"` // http | zeebe
	URL          string      `mapstructure:"url"`
	APIKeyHeader string      `mapstructure:"api_key_header"`
	APIKey       string      `mapstructure:"api_key"`
	Timeout      int         `mapstructure:"timeout"` // milliseconds
	Zeebe        ZeebeConfig `mapstructure:"zeebe"`
}

type ZeebeConfig struct {
	GatewayAddress string `mapstructure:"gateway_address"`
	ProcessID      string `mapstructure:"process_id"`
	Plaintext      bool   `mapstructure:"plaintext"`
}

type DatabaseConfig struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	Timeout   int      `mapstructure:"timeout"` // milliseconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DefaultsConfig locates the static payload defaults and the fallback
// values the orchestrator applies when a submission leaves them blank.
type DefaultsConfig struct {
	PayloadPath string `mapstructure:"payload_path"`
	Departement string `mapstructure:"departement"`
	MotifBCC    string `mapstructure:"motif_bcc"`
	AvisMotive  string `mapstructure:"avis_motive"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
