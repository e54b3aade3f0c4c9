package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone lookups must not depend on the host image
)

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Backend       BackendConfig           `mapstructure:"backend"`
	Redis         RedisConfig             `mapstructure:"redis"`
	Cache         CacheConfig             `mapstructure:"cache"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Server        ServerConfig            `mapstructure:"server"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress     string `mapstructure:"broker_address"`
	UsePlaintext      bool   `mapstructure:"use_plaintext"`
	MaxJobsActive     int    `mapstructure:"max_jobs_active"`
	Timeout           int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout    int    `mapstructure:"request_timeout"` // milliseconds
	AnalysisProcessID string `mapstructure:"analysis_process_id"`
}

// BackendConfig points at the IEDI REST API.
type BackendConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	AnalysesPath string `mapstructure:"analyses_path"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
	Timezone     string `mapstructure:"timezone"`
}

// Location resolves the zone wall-clock dates are entered in.
func (b BackendConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(b.Timezone)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	BankTTL int  `mapstructure:"bank_ttl"` // milliseconds
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling

	// Worker specific switches, nil when unset.
	CheckBanks *bool `mapstructure:"check_banks"`
	AllowEmpty *bool `mapstructure:"allow_empty"`
}

const (
	ChannelSNS = "sns"
	ChannelSES = "ses"
)

type NotificationConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Channel   string   `mapstructure:"channel"`
	Region    string   `mapstructure:"region"`
	TopicARN  string   `mapstructure:"topic_arn"`
	FromEmail string   `mapstructure:"from_email"`
	ToEmails  []string `mapstructure:"to_emails"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// RequireEngine checks the settings only the worker host needs.
func (c *Config) RequireEngine() error {
	if c.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if c.Cache.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when cache is enabled")
	}
	return nil
}

func (n NotificationConfig) validate() error {
	if !n.Enabled {
		return nil
	}
	switch strings.ToLower(n.Channel) {
	case ChannelSNS:
		if n.TopicARN == "" {
			return fmt.Errorf("notifications.topic_arn is required for the sns channel")
		}
	case ChannelSES:
		if n.FromEmail == "" || len(n.ToEmails) == 0 {
			return fmt.Errorf("notifications.from_email and notifications.to_emails are required for the ses channel")
		}
	default:
		return fmt.Errorf("notifications.channel must be %q or %q, got %q", ChannelSNS, ChannelSES, n.Channel)
	}
	return nil
}
