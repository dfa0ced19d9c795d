// Package forward provides the forward command, which relays every accepted
// connection to a fixed upstream address.
package forward

import (
	"context"
	"net"

	"dominicbreuker/gorelay/cmd/shared"
	"dominicbreuker/gorelay/pkg/config"
	"dominicbreuker/gorelay/pkg/handler"
	"dominicbreuker/gorelay/pkg/log"
	"dominicbreuker/gorelay/pkg/transport/tcp"

	"github.com/urfave/cli/v3"
)

const categoryForward = "forward"

const toFlag = "to"
const limitFlag = "limit"

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "forward",
		Usage: "Relay connections to another host",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := shared.GetSharedConfig(cmd)
			logger := log.NewLogger(cfg.Verbose)

			fCfg := &config.Forward{
				Target: cmd.String(toFlag),
				Limit:  int64(cmd.Int(limitFlag)),
			}

			if err := shared.ValidationError(logger, config.Validate(cfg, fCfg)); err != nil {
				return err
			}

			return Run(ctx, cfg, fCfg, logger)
		},
		Flags: getFlags(),
	}
}

// Run relays connections accepted on cfg.Port to fCfg.Target until ctx is
// cancelled. Upstream connections get the same idle timeout as accepted ones.
func Run(ctx context.Context, cfg *config.Shared, fCfg *config.Forward, logger *log.Logger) error {
	dial := func(ctx context.Context) (net.Conn, error) {
		return tcp.Dial(ctx, fCfg.Target, cfg.Timeout, cfg.Deps)
	}

	logger.InfoMsg("Forwarding to %s\n", fCfg.Target)
	return shared.Serve(ctx, cfg, handler.Forward(ctx, dial, fCfg.Limit, logger), logger)
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     toFlag,
			Usage:    "Upstream address, format host:port",
			Category: categoryForward,
			Required: true,
		},
		&cli.IntFlag{
			Name:     limitFlag,
			Usage:    "Close a connection after this many bytes in one direction, 0 for no limit",
			Category: categoryForward,
			Value:    0,
			Required: false,
		},
	}

	return append(flags, shared.GetServerFlags()...)
}
