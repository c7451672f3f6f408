package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string
	Port        int

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// activities pipeline
	ActivitiesCsvPath    string `toml:"activities_csv_path"`
	FetchCacheTTLMinutes int    `toml:"fetch_cache_ttl_minutes"`
	StravaBaseURL        string `toml:"strava_base_url"`

	// refresh rate limiting
	RedisHost                     string `toml:"redis_host"`
	RedisPort                     string `toml:"redis_port"`
	RefreshRateLimitAllowedPerMin int    `toml:"refresh_rate_limit_allowed_per_min"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}

	cfg.Environment = env

	if cfg.FetchCacheTTLMinutes <= 0 {
		cfg.FetchCacheTTLMinutes = 60
	}
	if cfg.RefreshRateLimitAllowedPerMin <= 0 {
		cfg.RefreshRateLimitAllowedPerMin = 5
	}

	return cfg, nil
}
