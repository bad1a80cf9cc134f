package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/lambda-feedback/restproxy/config"
	"github.com/lambda-feedback/restproxy/internal/shell"
	"github.com/lambda-feedback/restproxy/util/conf"
	"github.com/lambda-feedback/restproxy/util/logging"
)

const readHeaderTimeout = 10 * time.Second

var (
	appName  = "restproxy"
	appUsage = `A minimal http reverse proxy that forwards requests to a
fixed upstream using basic authentication.`
	rootApp = &cli.App{
		Name:            appName,
		Usage:           appUsage,
		HideHelpCommand: true,
		Args:            true,
		Flags: []cli.Flag{
			// general flags
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "set the log level. Options: debug, info, warn, error, panic, fatal.",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "set the log format. Options: production, development.",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "read configuration from a JSON file.",
				EnvVars: []string{"RESTPROXY_CONFIG"},
			},
			// proxy flags
			&cli.StringFlag{
				Name:     "upstream-url",
				Usage:    "the upstream url requests are forwarded to.",
				Aliases:  []string{"u"},
				Category: "proxy",
			},
			&cli.DurationFlag{
				Name:     "upstream-timeout",
				Usage:    "the timeout of a single upstream call.",
				Category: "proxy",
			},
			&cli.StringFlag{
				Name:     "response-mode",
				Usage:    "how upstream responses are relayed. Options: passthrough, envelope.",
				Category: "proxy",
			},
			&cli.IntFlag{
				Name:     "max-inflight",
				Usage:    "the maximum number of concurrent upstream calls, 0 is unbounded.",
				Category: "proxy",
			},
		},
		Before: func(ctx *cli.Context) error {
			// create the logger
			log, err := createLogger(ctx)
			if err != nil {
				return err
			}

			// inject logger into cli context
			ctx.Context = logging.ContextWithLogger(ctx.Context, log)

			// parse config using defaults, file, env and flags
			cfg, err := conf.Parse[config.Config](conf.ParseOptions{
				Defaults:  config.DefaultConfig,
				EnvPrefix: config.EnvPrefix,
				FileName:  ctx.String("config"),
				Cli:       ctx,
				CliMap: map[string]string{
					"upstream-url":     "upstream.url",
					"upstream-timeout": "upstream.timeout",
					"response-mode":    "proxy.response_mode",
					"max-inflight":     "proxy.max_inflight",
				},
				Log: log,
			})
			if err != nil {
				return err
			}

			// inject the config into the cli context
			ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

			return nil
		},
		After: func(ctx *cli.Context) error {
			log, err := logging.LoggerFromContext(ctx.Context)
			if err != nil {
				return err
			}

			_ = log.Sync()

			return nil
		},
	}
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

type ExecuteParams struct {
	Version  string
	Compiled time.Time
}

func Execute(params ExecuteParams) {
	rootApp.Version = params.Version
	rootApp.Compiled = params.Compiled

	os.Exit(run(context.Background(), os.Args))
}

// run executes the app and returns the process exit code.
func run(ctx context.Context, args []string) int {
	err := rootApp.RunContext(ctx, args)

	// if app exited without error, return
	if err == nil {
		return 0
	}

	// if app exited with ExitError, exit with given exit code
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}

	fmt.Fprintf(os.Stderr, "exit error: %s\n", err.Error())

	// otherwise, exit with exit code 1
	return 1
}

func createLogger(ctx *cli.Context) (*zap.Logger, error) {
	level := getLogLevelFromCLI(ctx)
	format := getLogFormatFromCLI(ctx)

	var config zap.Config
	if format == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	config.InitialFields = map[string]any{
		"app": appName,
	}

	config.Level = level

	return config.Build()
}

func getLogFormatFromCLI(ctx *cli.Context) string {
	format := ctx.String("log-format")
	if format != "" {
		return format
	}

	return "production"
}

func getLogLevelFromCLI(ctx *cli.Context) zap.AtomicLevel {
	lvl := ctx.String("log-level")

	if atom, err := zap.ParseAtomicLevel(lvl); err == nil {
		return atom
	}

	return zap.NewAtomicLevelAt(zap.InfoLevel)
}
