package cli_config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "WATCHTOWER"

func Load(path string, o Overrides) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.SetDefault("backend.base_url", "http://localhost:8787")
	v.SetDefault("backend.api_key", "dev-secret")
	v.SetDefault("backend.api_key_header", "X-API-Key")
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("backend.verify_tls", true)
	v.SetDefault("backend.user_agent", "watchtower-cli")

	// The CLI logs to stderr so stdout stays clean for tables and CSV.
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.pretty", true)
	v.SetDefault("log.output", "stderr")

	v.SetDefault("page_size", 50)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.apply(o)

	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return nil, ErrConfig("backend.base_url is required (set --base-url or WATCHTOWER_BACKEND_BASE_URL)")
	}
	return &cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.BaseURL != "" {
		c.Backend.BaseURL = o.BaseURL
	}
	if o.APIKey != "" {
		c.Backend.APIKey = o.APIKey
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}
