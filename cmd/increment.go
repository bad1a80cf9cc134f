package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/lambda-feedback/restproxy/internal/increment"
	"github.com/lambda-feedback/restproxy/internal/shell"
	"github.com/lambda-feedback/restproxy/util/logging"
)

var (
	incrementCmdDescription = `The increment command starts a small upstream service that
the proxy can forward to during development. It serves
PATCH and POST /api/increment behind basic auth, reads an
integer (or {"value": <integer>}) from the body and responds
with the integer incremented by one.`
	incrementCmd = &cli.Command{
		Name:        "increment",
		Usage:       "Start the increment dev upstream.",
		Description: incrementCmdDescription,
		Action:      incrementAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "The host to listen on.",
				Value:    "localhost",
				Category: "http",
				EnvVars:  []string{"INCREMENT_HOST"},
			},
			&cli.IntFlag{
				Name:     "port",
				Aliases:  []string{"P"},
				Usage:    "The port to listen on.",
				Value:    8090,
				Category: "http",
				EnvVars:  []string{"INCREMENT_PORT"},
			},
			&cli.StringFlag{
				Name:     "username",
				Usage:    "The basic auth username.",
				Category: "auth",
				EnvVars:  []string{"INCREMENT_USERNAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Usage:    "The basic auth password.",
				Category: "auth",
				EnvVars:  []string{"INCREMENT_PASSWORD"},
			},
			&cli.StringFlag{
				Name:     "password-hash",
				Usage:    "A bcrypt hash of the basic auth password, used instead of --password.",
				Category: "auth",
				EnvVars:  []string{"INCREMENT_PASSWORD_HASH"},
			},
		},
	}
)

func incrementAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	cfg := increment.Config{
		HttpConfig:   httpConfigFromCLI(ctx),
		Username:     ctx.String("username"),
		Password:     ctx.String("password"),
		PasswordHash: ctx.String("password-hash"),
	}

	return shell.New(log).Run(ctx.Context, increment.Module(cfg))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, incrementCmd)
}
