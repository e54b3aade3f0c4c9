package notifyanalysis

import (
	"fmt"
	"strings"
	"time"

	"iedi-workers/internal/common/config"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Channel       string        `mapstructure:"channel"`
	TopicARN      string        `mapstructure:"topic_arn"`
	FromEmail     string        `mapstructure:"from_email"`
	ToEmails      []string      `mapstructure:"to_emails"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       false,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		Channel:       config.ChannelSNS,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if !c.Enabled {
		return nil
	}
	switch strings.ToLower(c.Channel) {
	case config.ChannelSNS:
		if c.TopicARN == "" {
			return fmt.Errorf("topic_arn is required for the sns channel")
		}
	case config.ChannelSES:
		if c.FromEmail == "" {
			return fmt.Errorf("from_email is required for the ses channel")
		}
	default:
		return fmt.Errorf("unsupported channel %q", c.Channel)
	}
	return nil
}
