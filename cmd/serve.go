package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/lambda-feedback/restproxy/app"
	"github.com/lambda-feedback/restproxy/app/standalone"
	"github.com/lambda-feedback/restproxy/internal/server"
)

var (
	serveCmdDescription = `The serve command starts the proxy as a standalone http
server. Requests to /proxy (and /) are forwarded to the
configured upstream, /health reports liveness and /metrics
exposes prometheus metrics.

The command will launch the http server and blocks indefin-
itely, processing incoming http requests.`
	serveCmd = &cli.Command{
		Name:        "serve",
		Usage:       "Start the proxy http server.",
		Description: serveCmdDescription,
		Action:      serveAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "The host to listen on.",
				Value:    "localhost",
				Category: "http",
				EnvVars:  []string{"HTTP_HOST"},
			},
			&cli.IntFlag{
				Name:     "port",
				Aliases:  []string{"P"},
				Usage:    "The port to listen on.",
				Value:    8080,
				Category: "http",
				EnvVars:  []string{"HTTP_PORT"},
			},
			&cli.BoolFlag{
				Name:     "h2c",
				Usage:    "Enable HTTP/2 cleartext upgrade.",
				Value:    false,
				Category: "http",
				EnvVars:  []string{"HTTP_H2C"},
			},
		},
	}
)

func serveAction(ctx *cli.Context) error {
	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	cfg := standalone.Config{
		HttpConfig: httpConfigFromCLI(ctx),
	}

	return app.Run(ctx.Context, standalone.Module(cfg))
}

func httpConfigFromCLI(ctx *cli.Context) server.HttpConfig {
	return server.HttpConfig{
		Host:              ctx.String("host"),
		Port:              ctx.Int("port"),
		H2c:               ctx.Bool("h2c"),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func init() {
	rootApp.Commands = append(rootApp.Commands, serveCmd)
}
