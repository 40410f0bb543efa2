package dashboard_config

import (
	"time"

	"github.com/kieranyoussef/finops-watchtower/internal/obs"
	"github.com/kieranyoussef/finops-watchtower/internal/repository/backend"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	Addr            string        `mapstructure:"addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type Backend struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	APIKeyHeader string        `mapstructure:"api_key_header"`
	Timeout      time.Duration `mapstructure:"timeout"`
	VerifyTLS    bool          `mapstructure:"verify_tls"`
	UserAgent    string        `mapstructure:"user_agent"`
}

func (b *Backend) AsClientConfig() backend.Config {
	return backend.Config{
		BaseURL:      b.BaseURL,
		APIKey:       b.APIKey,
		APIKeyHeader: b.APIKeyHeader,
		Timeout:      b.Timeout,
		VerifyTLS:    b.VerifyTLS,
		UserAgent:    b.UserAgent,
	}
}

type UI struct {
	PageSize      int           `mapstructure:"page_size"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig(version string) *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:         oc.Enable,
		Endpoint:       oc.OTLPEndpoint,
		ServiceName:    oc.ServiceName,
		ServiceVersion: version,
		SampleRatio:    oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	App     App     `mapstructure:"app"`
	Server  Server  `mapstructure:"server"`
	Backend Backend `mapstructure:"backend"`
	UI      UI      `mapstructure:"ui"`
	OTEL    OTEL    `mapstructure:"otel"`
	Log     Log     `mapstructure:"log"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
