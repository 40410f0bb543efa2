package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "github.com/kieranyoussef/finops-watchtower/internal/config/cli"
	"github.com/kieranyoussef/finops-watchtower/internal/obs"
	"github.com/kieranyoussef/finops-watchtower/internal/repository/backend"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

var (
	cfgFile  string
	baseURL  string
	apiKey   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "watchtower",
	Short: "Inspect and create Watchtower anomaly runs",
	Long: `watchtower talks to the Watchtower analysis API: list past runs, inspect
their findings, start new runs from CSV or JSON rows and export findings as CSV.

Settings come from the config file, WATCHTOWER_* environment variables and
the flags below, in increasing order of precedence.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, color.Red.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "",
		"Override the analysis API base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "",
		"Override the shared API secret")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
}

// session is what every backend-facing command needs.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	client *backend.Client
}

func (s *session) Close() { _ = s.log.Sync() }

func openSession() (*session, error) {
	cfg, err := config.Load(cfgFile, config.Overrides{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		LogLevel: logLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := obs.NewLogger(cfg.AsLoggerConfig(Version))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	client, err := backend.New(cfg.Backend.AsClientConfig())
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, client: client.WithLogger(log)}, nil
}
