// Package config loads exporter settings from a YAML file and the process
// environment. Environment variables always win over file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every setting the exporter needs. The driver builds it once
// and passes it down; nothing reads the environment after load.
type Config struct {
	// BaseURL is the rate service endpoint, without date or query parts.
	BaseURL   string `yaml:"base_url" env:"RATEFEED_BASE_URL" env-required:"true"`
	AccessKey string `yaml:"access_key" env:"RATEFEED_ACCESS_KEY" env-required:"true"`

	// Retries is the number of additional attempts after the first.
	Retries int           `yaml:"retries" env:"RATEFEED_RETRIES" env-default:"3"`
	Timeout time.Duration `yaml:"timeout" env:"RATEFEED_TIMEOUT" env-default:"10s"`

	// Quotes is the accepted currency-code whitelist.
	Quotes []string `yaml:"quotes" env:"RATEFEED_QUOTES" env-separator:"," env-default:"AUD,CAD,CHF,CNY,EUR,GBP,JPY,USD"`

	// Width bounds how many sink writes run at once.
	Width int `yaml:"width" env:"RATEFEED_WIDTH" env-default:"100"`

	Sink    SinkConfig `yaml:"sink"`
	Metrics struct {
		// Addr enables the /metrics endpoint when non-empty.
		Addr string `yaml:"addr" env:"RATEFEED_METRICS_ADDR"`
	} `yaml:"metrics"`
	Log LogConfig `yaml:"log"`
}

// SinkConfig selects and configures the line sink backend.
type SinkConfig struct {
	// Backend is one of "file", "sqlite", "kafka".
	Backend      string   `yaml:"backend" env:"RATEFEED_SINK" env-default:"file"`
	OutputDir    string   `yaml:"output_dir" env:"RATEFEED_OUTPUT_DIR" env-default:"data"`
	SQLitePath   string   `yaml:"sqlite_path" env:"RATEFEED_SQLITE_PATH" env-default:"ratefeed.db"`
	KafkaBrokers []string `yaml:"kafka_brokers" env:"RATEFEED_KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `yaml:"kafka_topic" env:"RATEFEED_KAFKA_TOPIC" env-default:"ratefeed.lines"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" env:"RATEFEED_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"RATEFEED_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from the file named by RATEFEED_CONFIG_PATH if
// set, then from the environment. A missing required setting is fatal to the
// caller; there is no retry for configuration errors.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("RATEFEED_CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required (RATEFEED_BASE_URL)")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("access key is required (RATEFEED_ACCESS_KEY)")
	}

	switch c.Sink.Backend {
	case "file", "sqlite":
	case "kafka":
		if len(c.Sink.KafkaBrokers) == 0 {
			return fmt.Errorf("sink backend kafka requires RATEFEED_KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("unknown sink backend %q", c.Sink.Backend)
	}

	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
