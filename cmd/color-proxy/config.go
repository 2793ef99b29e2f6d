package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/color-cache/pkg/client"
	"github.com/Sternrassler/color-cache/pkg/logging"
	"github.com/Sternrassler/color-cache/pkg/prefetch"
	"github.com/spf13/viper"
)

// Config is the proxy configuration.
type Config struct {
	Port     string
	Client   client.Config
	Logging  logging.Config
	Prefetch []string
	Warmer   prefetch.Config

	// RequestTimeout bounds how long a proxy request waits for a list
	RequestTimeout time.Duration
}

// loadConfig reads configuration from environment variables prefixed with
// COLOR_PROXY_ and, if configPath is set, from that file.
func loadConfig(v *viper.Viper, configPath string) (Config, error) {
	v.SetEnvPrefix("COLOR_PROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := client.DefaultConfig()
	v.SetDefault("port", "8080")
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("max_retries", 0)
	v.SetDefault("initial_backoff", time.Duration(0))
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("log_level", string(logging.LevelInfo))
	v.SetDefault("log_pretty", false)
	v.SetDefault("prefetch", "bestOf")
	v.SetDefault("prefetch_concurrency", prefetch.DefaultConfig().MaxConcurrency)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	level, err := logging.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: v.GetString("port"),
		Client: client.Config{
			BaseURL:        v.GetString("base_url"),
			UserAgent:      v.GetString("user_agent"),
			Timeout:        v.GetDuration("timeout"),
			MaxRetries:     v.GetInt("max_retries"),
			InitialBackoff: v.GetDuration("initial_backoff"),
		},
		Logging: logging.Config{
			Level:  level,
			Pretty: v.GetBool("log_pretty"),
		},
		Prefetch: listNames(v, "prefetch"),
		Warmer: prefetch.Config{
			MaxConcurrency: v.GetInt("prefetch_concurrency"),
			Timeout:        v.GetDuration("timeout"),
		},
		RequestTimeout: v.GetDuration("request_timeout"),
	}

	if cfg.Port == "" {
		return Config{}, fmt.Errorf("port is required")
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("request_timeout must be > 0 (got %s)", cfg.RequestTimeout)
	}

	return cfg, nil
}

// listNames reads key either as a comma separated string (environment) or
// as a list (config file).
func listNames(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return splitList(s)
	}
	var names []string
	for _, item := range v.GetStringSlice(key) {
		names = append(names, splitList(item)...)
	}
	return names
}

// splitList parses a comma separated list of list names.
func splitList(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
