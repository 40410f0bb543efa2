package dashboard_config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "WATCHTOWER"

// Load reads path (when set and present) and overlays WATCHTOWER_* env vars,
// e.g. WATCHTOWER_BACKEND_BASE_URL.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetDefault("app.name", "watchtower-dashboard")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.version", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", "")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.graceful_timeout", "15s")

	v.SetDefault("backend.base_url", "http://localhost:8787")
	v.SetDefault("backend.api_key", "dev-secret")
	v.SetDefault("backend.api_key_header", "X-API-Key")
	v.SetDefault("backend.timeout", "30s")
	v.SetDefault("backend.verify_tls", true)
	v.SetDefault("backend.user_agent", "watchtower-dashboard")

	v.SetDefault("ui.page_size", 25)
	v.SetDefault("ui.session_ttl", "30m")
	v.SetDefault("ui.sweep_interval", "1m")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "watchtower-dashboard")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case strings.TrimSpace(c.Backend.BaseURL) == "":
		return ErrConfig("backend.base_url is required")
	case c.Server.Addr == "":
		return ErrConfig("server.addr is required")
	case c.UI.PageSize < 0:
		return ErrConfig("ui.page_size must not be negative")
	}
	return nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}
