// Package connect provides the connect command, which attaches stdin and
// stdout to a TCP connection.
package connect

import (
	"context"
	"fmt"

	"dominicbreuker/gorelay/cmd/shared"
	"dominicbreuker/gorelay/pkg/config"
	"dominicbreuker/gorelay/pkg/log"
	"dominicbreuker/gorelay/pkg/pipeio"
	"dominicbreuker/gorelay/pkg/transport/tcp"

	"github.com/urfave/cli/v3"
)

const categoryConnect = "connect"

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Connect to a remote host and pipe stdin/stdout through the connection",
		ArgsUsage: "host:port",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := &config.Connect{
				Target:  cmd.Args().First(),
				Verbose: cmd.Bool(shared.VerboseFlag),
				Timeout: cmd.Duration(shared.TimeoutFlag),
			}
			logger := log.NewLogger(cfg.Verbose)

			if err := shared.ValidationError(logger, config.Validate(cfg)); err != nil {
				return err
			}

			return Run(ctx, cfg, logger)
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:     shared.VerboseFlag,
				Aliases:  []string{"v"},
				Usage:    "Verbose logging",
				Category: categoryConnect,
				Value:    false,
				Required: false,
			},
			&cli.DurationFlag{
				Name:     shared.TimeoutFlag,
				Aliases:  []string{"t"},
				Usage:    "Idle timeout of the connection, 0 disables it",
				Category: categoryConnect,
				Value:    0,
				Required: false,
			},
		},
	}
}

// Run connects to cfg.Target and copies stdin to the connection and the
// connection to stdout until either side closes or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Connect, logger *log.Logger) error {
	conn, err := tcp.Dial(ctx, cfg.Target, cfg.Timeout, cfg.Deps)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	logger.InfoMsg("Connected to %s\n", conn.RemoteAddr())

	stdio := pipeio.NewStdio(config.GetStdinFunc(cfg.Deps)(), config.GetStdoutFunc(cfg.Deps)())
	// transfer errors usually just mean the peer went away; only report
	// them when asked to
	stats := pipeio.Pipe(ctx, stdio, conn, 0, func(err error) {
		if logger.Verbose() {
			logger.ErrorMsg("Pipe(stdio, %s): %s\n", conn.RemoteAddr(), err)
		}
	})

	logger.VerboseMsg("Sent %d bytes, received %d bytes", stats.Forward, stats.Backward)
	return nil
}
