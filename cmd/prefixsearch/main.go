package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prefixsearch/internal/config"
	"github.com/kailas-cloud/prefixsearch/internal/domain"
	logpkg "github.com/kailas-cloud/prefixsearch/internal/logger"
	"github.com/kailas-cloud/prefixsearch/internal/metrics"
	"github.com/kailas-cloud/prefixsearch/internal/version"
)

const (
	exitFailure      = 1
	exitInputMissing = 2

	metaState = "state"
)

// appState is the state shared by every command, built once in Before.
type appState struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	if errors.Is(err, domain.ErrInputNotFound) {
		return exitInputMissing
	}
	return exitFailure
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "prefixsearch",
		Usage:   "Multilingual prefix search over a product catalog",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (default: config/<env>.yaml)",
				EnvVars: []string{"PREFIXSEARCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Environment name: local, dev, docker, prod",
				Value: config.GetEnv(),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override the log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "Override backend.driver (redis, memory)",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			evaluateCommand(),
			prefixCommand(),
			indexCommand(),
			summarizeCommand(),
			serveCommand(),
		},
	}
}

// setup loads configuration and the logger for the invoked command.
func setup(c *cli.Context) error {
	if !needsState(c.Args().Slice()) {
		return nil
	}
	env := c.String("env")

	var (
		cfg config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if d := c.String("driver"); d != "" {
		cfg.Backend.Driver = d
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	level := cfg.Logging.Level
	if l := c.String("log-level"); l != "" {
		level = l
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterSearchMetrics()

	c.App.Metadata = map[string]any{metaState: &appState{env: env, cfg: cfg, logger: logger}}
	return nil
}

// needsState reports whether args name a command run rather than a help request.
func needsState(args []string) bool {
	if len(args) == 0 || args[0] == "help" || args[0] == "h" {
		return false
	}
	for _, a := range args[1:] {
		if a == "--" {
			break
		}
		if a == "-h" || a == "--help" {
			return false
		}
	}
	return true
}

func teardown(c *cli.Context) error {
	if rt, ok := c.App.Metadata[metaState].(*appState); ok {
		_ = rt.logger.Sync()
	}
	return nil
}

func stateFrom(c *cli.Context) (*appState, error) {
	rt, ok := c.App.Metadata[metaState].(*appState)
	if !ok {
		return nil, errors.New("app state not initialized")
	}
	return rt, nil
}

// commandContext is cancelled on SIGINT/SIGTERM and carries the logger.
func commandContext(c *cli.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	return logpkg.ContextWithLogger(ctx, logger), cancel
}
