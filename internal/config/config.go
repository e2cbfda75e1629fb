// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package config loads the service configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"config.yaml",
	"/etc/ac-csv-import/config.yaml",
}

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Connect    ConnectConfig    `koanf:"connect"`
	Dataporten DataportenConfig `koanf:"dataporten"`
	NATS       NATSConfig       `koanf:"nats"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string        `koanf:"port" validate:"required,numeric"`
	Bind            string        `koanf:"bind"`
	BasePath        string        `koanf:"base_path" validate:"required,startswith=/"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ConnectConfig holds the Adobe Connect connection parameters.
type ConnectConfig struct {
	// BaseURL is the XML API endpoint, e.g. https://connect.example.org/api/xml
	BaseURL        string        `koanf:"base_url" validate:"required,url"`
	Login          string        `koanf:"login" validate:"required"`
	Password       string        `koanf:"password" validate:"required"`
	SharedFolderID string        `koanf:"shared_folder_id" validate:"required"`
	ServiceURL     string        `koanf:"service_url" validate:"required,url"`
	Timeout        time.Duration `koanf:"timeout"`
	Breaker        BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of Connect.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// DataportenConfig holds the gatekeeper validation parameters.
type DataportenConfig struct {
	// ClientID must match the X-Dataporten-Clientid header. Empty disables the check.
	ClientID string `koanf:"client_id"`
	// UserIDPrefix is the required scheme of X-Dataporten-Userid-Sec.
	UserIDPrefix string `koanf:"userid_prefix" validate:"required"`
}

// NATSConfig configures the optional event publisher.
type NATSConfig struct {
	// URL of the NATS server; empty disables publishing.
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Bind:            "*",
			BasePath:        "/api/ac-csv-import",
			CORSOrigins:     []string{"*"},
			RateLimit:       60,
			RateLimitWindow: time.Minute,
			ShutdownTimeout: 25 * time.Second,
		},
		Connect: ConnectConfig{
			Timeout: 5 * time.Minute,
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  1,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  5,
				FailureRatio: 0.6,
			},
		},
		Dataporten: DataportenConfig{
			UserIDPrefix: "feide",
		},
		NATS: NATSConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// envMappings maps environment variables to config paths. Variables not
// listed here are ignored.
var envMappings = map[string]string{
	"port":                          "server.port",
	"bind":                          "server.bind",
	"api_base_path":                 "server.base_path",
	"cors_allowed_origins":          "server.cors_origins",
	"rate_limit":                    "server.rate_limit",
	"rate_limit_window":             "server.rate_limit_window",
	"shutdown_timeout":              "server.shutdown_timeout",
	"connect_api_base":              "connect.base_url",
	"connect_api_userid":            "connect.login",
	"connect_api_passwd":            "connect.password",
	"connect_shared_folder_id":      "connect.shared_folder_id",
	"connect_service_url":           "connect.service_url",
	"connect_timeout":               "connect.timeout",
	"connect_breaker_enabled":       "connect.breaker.enabled",
	"connect_breaker_max_requests":  "connect.breaker.max_requests",
	"connect_breaker_interval":      "connect.breaker.interval",
	"connect_breaker_timeout":       "connect.breaker.timeout",
	"connect_breaker_min_requests":  "connect.breaker.min_requests",
	"connect_breaker_failure_ratio": "connect.breaker.failure_ratio",
	"dataporten_client_id":          "dataporten.client_id",
	"dataporten_userid_prefix":      "dataporten.userid_prefix",
	"nats_url":                      "nats.url",
	"nats_timeout":                  "nats.timeout",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load builds the configuration. path may be empty, in which case
// CONFIG_PATH and DefaultConfigPaths are searched; a missing file is not an
// error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			Result:           cfg,
			TagName:          "koanf",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// normalize trims values that are commonly written with stray separators.
func (c *Config) normalize() {
	c.Server.BasePath = "/" + strings.Trim(c.Server.BasePath, "/")
	c.Connect.ServiceURL = strings.TrimRight(c.Connect.ServiceURL, "/")

	origins := c.Server.CORSOrigins[:0]
	for _, o := range c.Server.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Server.CORSOrigins = origins
}

// Validate checks the struct tags and reports the offending fields.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
