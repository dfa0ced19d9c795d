// Package listen provides the listen command, which serves the echo
// protocols on a local port.
package listen

import (
	"context"
	"fmt"

	"dominicbreuker/gorelay/cmd/shared"
	"dominicbreuker/gorelay/pkg/config"
	"dominicbreuker/gorelay/pkg/handler"
	"dominicbreuker/gorelay/pkg/log"
	"dominicbreuker/gorelay/pkg/transport"

	"github.com/urfave/cli/v3"
)

const categoryListen = "listen"

const modeFlag = "mode"
const markerFlag = "marker"
const bufSizeFlag = "bufsize"

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "listen",
		Usage: "Echo delimited messages or length-prefixed frames back to every client",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := shared.GetSharedConfig(cmd)
			logger := log.NewLogger(cfg.Verbose)

			marker, err := shared.ParseMarker(cmd.String(markerFlag))
			if err != nil {
				return fmt.Errorf("'--%s': %w", markerFlag, err)
			}

			lCfg := &config.Listen{
				Mode:    cmd.String(modeFlag),
				Marker:  string(marker),
				BufSize: int(cmd.Int(bufSizeFlag)),
			}

			if err := shared.ValidationError(logger, config.Validate(cfg, lCfg)); err != nil {
				return err
			}

			return Run(ctx, cfg, lCfg, logger)
		},
		Flags: getFlags(),
	}
}

// Run serves lCfg.Mode on the port in cfg until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Shared, lCfg *config.Listen, logger *log.Logger) error {
	var handle transport.Handler
	switch lCfg.Mode {
	case config.ModeFrames:
		handle = handler.Frames([]byte(lCfg.Marker), lCfg.BufSize)
	default:
		handle = handler.Echo([]byte(lCfg.Marker), lCfg.BufSize)
	}

	logger.VerboseMsg("Mode %s, marker %q, buffer %d bytes", lCfg.Mode, lCfg.Marker, lCfg.BufSize)
	return shared.Serve(ctx, cfg, handle, logger)
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     modeFlag,
			Usage:    fmt.Sprintf("Protocol: %s (echo each delimited piece) or %s (length-prefixed frames)", config.ModeEcho, config.ModeFrames),
			Category: categoryListen,
			Value:    config.ModeEcho,
			Required: false,
		},
		&cli.StringFlag{
			Name:     markerFlag,
			Usage:    `Delimiter, Go escapes allowed (e.g. \r\n)`,
			Category: categoryListen,
			Value:    `\r\n`,
			Required: false,
		},
		&cli.IntFlag{
			Name:     bufSizeFlag,
			Usage:    "Per-connection buffer in bytes (largest echoed piece or frame header)",
			Category: categoryListen,
			Value:    4096,
			Required: false,
		},
	}

	return append(flags, shared.GetServerFlags()...)
}
