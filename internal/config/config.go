package config

import (
	"strings"
	"time"

	"convo-insights-go/internal/escalation"
	"convo-insights-go/internal/types"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Source kinds.
const (
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceRemote   = "remote"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Roles     RolesConfig     `yaml:"roles" mapstructure:"roles"`
	Toxicity  ToxicityConfig  `yaml:"toxicity" mapstructure:"toxicity"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SourceConfig selects where raw conversation records come from.
type SourceConfig struct {
	Kind         string `yaml:"kind" mapstructure:"kind"`
	Path         string `yaml:"path" mapstructure:"path"`
	DatabaseURL  string `yaml:"database_url" mapstructure:"database_url"`
	RemoteURL    string `yaml:"remote_url" mapstructure:"remote_url"`
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	LookbackDays int    `yaml:"lookback_days" mapstructure:"lookback_days"`
}

// RolesConfig points at the agent role CSV.
type RolesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ToxicityConfig tunes the toxicity fallback chain.
type ToxicityConfig struct {
	Threshold          float64 `yaml:"threshold" mapstructure:"threshold"`
	AbusiveCapsTrigger float64 `yaml:"abusive_caps_trigger" mapstructure:"abusive_caps_trigger"`
	MinMessages        int     `yaml:"min_messages" mapstructure:"min_messages"`
}

// DashboardConfig holds default view parameters.
type DashboardConfig struct {
	Window        string `yaml:"window" mapstructure:"window"`
	Metric        string `yaml:"metric" mapstructure:"metric"`
	AgentLimit    int    `yaml:"agent_limit" mapstructure:"agent_limit"`
	ReasonLimit   int    `yaml:"reason_limit" mapstructure:"reason_limit"`
	ToxicityLimit int    `yaml:"toxicity_limit" mapstructure:"toxicity_limit"`
	TipLimit      int    `yaml:"tip_limit" mapstructure:"tip_limit"`
}

// Load reads .env, then config.yaml (optional), then INSIGHTS_* environment
// variables, in increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("source.kind", SourceFile)
	v.SetDefault("source.path", "data/conversations.csv")
	v.SetDefault("source.database_url", "")
	v.SetDefault("source.remote_url", "")
	v.SetDefault("source.api_key", "")
	v.SetDefault("source.timeout_secs", 12)
	v.SetDefault("source.lookback_days", 0)
	v.SetDefault("roles.path", "data/port_roles.csv")
	v.SetDefault("toxicity.threshold", 0.5)
	v.SetDefault("toxicity.abusive_caps_trigger", 3)
	v.SetDefault("toxicity.min_messages", 1)
	v.SetDefault("dashboard.window", string(types.Window7d))
	v.SetDefault("dashboard.metric", string(escalation.MetricTier))
	v.SetDefault("dashboard.agent_limit", 5)
	v.SetDefault("dashboard.reason_limit", 10)
	v.SetDefault("dashboard.toxicity_limit", 5)
	v.SetDefault("dashboard.tip_limit", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields each source kind needs and the dashboard defaults.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}

	switch c.Source.Kind {
	case SourceFile, SourceSQLite:
		if c.Source.Path == "" {
			return eris.Errorf("config: source.path is required for %s sources", c.Source.Kind)
		}
	case SourcePostgres:
		if c.Source.DatabaseURL == "" {
			return eris.New("config: source.database_url is required for postgres sources")
		}
	case SourceRemote:
		if c.Source.RemoteURL == "" {
			return eris.New("config: source.remote_url is required for remote sources")
		}
	default:
		return eris.Errorf("config: unknown source.kind %q", c.Source.Kind)
	}
	if c.Source.LookbackDays < 0 {
		return eris.New("config: source.lookback_days must not be negative")
	}

	if _, err := types.ParseWindow(c.Dashboard.Window); err != nil {
		return eris.Wrap(err, "config: dashboard.window")
	}
	if _, err := escalation.ParseMetric(c.Dashboard.Metric); err != nil {
		return eris.Wrap(err, "config: dashboard.metric")
	}

	if c.Toxicity.Threshold < 0 || c.Toxicity.Threshold > 1 {
		return eris.Errorf("config: toxicity.threshold %.2f outside [0,1]", c.Toxicity.Threshold)
	}
	for name, n := range map[string]int{
		"agent_limit":    c.Dashboard.AgentLimit,
		"reason_limit":   c.Dashboard.ReasonLimit,
		"toxicity_limit": c.Dashboard.ToxicityLimit,
		"tip_limit":      c.Dashboard.TipLimit,
	} {
		if n < 0 {
			return eris.Errorf("config: dashboard.%s must not be negative", name)
		}
	}
	if c.Toxicity.AbusiveCapsTrigger < 0 {
		return eris.New("config: toxicity.abusive_caps_trigger must not be negative")
	}
	return nil
}

// Settings returns the toxicity settings consumed by the aggregators.
func (c *Config) Settings() types.Settings {
	return types.Settings{
		ToxicityThreshold:      c.Toxicity.Threshold,
		AbusiveCapsTrigger:     c.Toxicity.AbusiveCapsTrigger,
		MinMessagesForToxicity: c.Toxicity.MinMessages,
	}
}

// Since is the earliest reference instant to load, zero when unbounded.
func (c *Config) Since(now time.Time) time.Time {
	if c.Source.LookbackDays <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -c.Source.LookbackDays)
}

// Timeout bounds one remote request.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Source.TimeoutSecs) * time.Second
}
