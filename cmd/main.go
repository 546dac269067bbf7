package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/hitlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "HITLIST_CONFIG"

// DefaultConfigPath is read when HITLIST_CONFIG is unset.
const DefaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config, configPath, err := loadConfig(os.Getenv)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	if err := shared.SetLogLevel(logger, config.Log.Level); err != nil {
		logger.Warn("ignoring log level", "err", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := newApp(runner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx, os.Args)
	stop()

	if err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// loadConfig reads the file named by HITLIST_CONFIG, or config.toml when it exists, and applies env secrets.
//
// Only an explicitly named file must exist.
func loadConfig(lookup func(string) string) (*shared.Config, string, error) {
	configPath := lookup(EnvConfigPath)
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}

	config, err := shared.LoadConfig(configPath)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, shared.ErrMissingConfig):
		config = shared.DefaultConfig()
	default:
		return nil, configPath, err
	}

	config.ApplyEnv(lookup)
	return config, configPath, nil
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "hitlist",
		Usage:   "Enrich the weekly chart with production credits and videos",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}
