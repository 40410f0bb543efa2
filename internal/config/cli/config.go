package cli_config

import (
	"time"

	"github.com/kieranyoussef/finops-watchtower/internal/obs"
	"github.com/kieranyoussef/finops-watchtower/internal/repository/backend"
)

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

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	Output string `mapstructure:"output"`
}

type Config struct {
	Backend  Backend `mapstructure:"backend"`
	Log      Log     `mapstructure:"log"`
	PageSize int     `mapstructure:"page_size"`
}

func (c *Config) AsLoggerConfig(version string) obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    "watchtower",
		Ver:    version,
		Output: c.Log.Output,
	}
}

// Overrides carries command-line flag values. Empty fields leave the
// configured value alone.
type Overrides struct {
	BaseURL  string
	APIKey   string
	LogLevel string
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
