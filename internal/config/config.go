// Package config provides engine configuration with environment overrides.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/estrateji/edusync/internal/errors"
)

// EnvPrefix is the env prefix for viper (e.g. EDUSYNC_API_BASE_URL).
const EnvPrefix = "EDUSYNC"

// Config holds every knob of the engine. Intervals are explicit so tests and
// embedders can drive cadences instead of relying on ambient globals.
type Config struct {
	DataDir        string        `mapstructure:"data_dir" validate:"required"`
	APIBaseURL     string        `mapstructure:"api_base_url" validate:"required,url"`
	HeartbeatURL   string        `mapstructure:"heartbeat_url"`
	SyncInterval   time.Duration `mapstructure:"sync_interval"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PrefetchCount  int           `mapstructure:"prefetch_count" validate:"min=0"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

// Load reads configuration from an optional edusync.yaml in the working
// directory plus EDUSYNC_* environment variables, applying defaults for every
// unset knob.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", "./data")
	v.SetDefault("api_base_url", "http://localhost:8000/api")
	v.SetDefault("heartbeat_url", "")
	v.SetDefault("sync_interval", 15*time.Second)
	v.SetDefault("retry_interval", 30*time.Second)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("prefetch_count", 2)
	v.SetDefault("log_level", "info")

	v.SetConfigName("edusync")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env and defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(errors.ErrConfig, "read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfig, "decode config", err)
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) check() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrConfig, "invalid configuration", err)
	}
	// validator tags cannot express duration bounds.
	if c.SyncInterval < time.Second {
		return errors.New(errors.ErrConfig, "sync_interval must be at least 1s")
	}
	if c.RetryInterval < time.Second {
		return errors.New(errors.ErrConfig, "retry_interval must be at least 1s")
	}
	if c.RequestTimeout <= 0 {
		return errors.New(errors.ErrConfig, "request_timeout must be positive")
	}
	return nil
}
