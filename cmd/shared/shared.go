// Package shared provides common CLI flag definitions and utility functions
// used across gorelay's command-line interface.
package shared

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dominicbreuker/gorelay/pkg/config"
	"dominicbreuker/gorelay/pkg/log"
	"dominicbreuker/gorelay/pkg/server"
	"dominicbreuker/gorelay/pkg/transport"
	"dominicbreuker/gorelay/pkg/transport/tcp"

	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// PortFlag is the name of the flag to specify the local port.
const PortFlag = "port"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// TimeoutFlag is the name of the flag to specify the connection idle timeout.
const TimeoutFlag = "timeout"

// MaxConnsFlag is the name of the flag to limit concurrent connections.
const MaxConnsFlag = "max-conns"

// LogFileFlag is the name of the flag to specify a traffic log file.
const LogFileFlag = "log"

// MetricsFlag is the name of the flag to specify the metrics address.
const MetricsFlag = "metrics"

// GetServerFlags returns the CLI flags shared by all commands that accept
// connections.
func GetServerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     PortFlag,
			Aliases:  []string{"p"},
			Usage:    "Local port, 0 picks a free one",
			Category: categoryCommon,
			Required: true,
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.DurationFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Idle timeout of every read and write on a connection",
			Category: categoryCommon,
			Value:    tcp.IdleTimeout,
			Required: false,
		},
		&cli.IntFlag{
			Name:     MaxConnsFlag,
			Usage:    "Maximum number of concurrent connections, 0 for no limit",
			Category: categoryCommon,
			Value:    0,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Append all traffic to this file",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.StringFlag{
			Name:     MetricsFlag,
			Aliases:  []string{"m"},
			Usage:    "Serve prometheus metrics on host:port, leave empty to disable",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
	}
}

// GetSharedConfig reads the flags of GetServerFlags from cmd.
func GetSharedConfig(cmd *cli.Command) *config.Shared {
	return &config.Shared{
		Port:        int(cmd.Int(PortFlag)),
		Verbose:     cmd.Bool(VerboseFlag),
		Timeout:     cmd.Duration(TimeoutFlag),
		MaxConns:    int(cmd.Int(MaxConnsFlag)),
		LogFile:     cmd.String(LogFileFlag),
		MetricsAddr: cmd.String(MetricsFlag),
	}
}

// ValidationError logs every error in errs and returns the error a command
// should exit with, or nil if errs is empty.
func ValidationError(logger *log.Logger, errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	logger.ErrorMsg("Argument validation errors:\n")
	for _, err := range errs {
		logger.ErrorMsg(" - %s\n", err)
	}
	return fmt.Errorf("exiting")
}

// ParseMarker turns a flag value with Go escape sequences such as \r\n into
// the raw delimiter bytes.
func ParseMarker(s string) ([]byte, error) {
	unquoted, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
	if err != nil {
		return nil, fmt.Errorf("parsing marker %q: %w", s, err)
	}
	return []byte(unquoted), nil
}

// Serve runs handle for every connection accepted on cfg.Port until ctx is
// cancelled. If cfg.MetricsAddr is set, the server's metrics are served there
// too.
func Serve(ctx context.Context, cfg *config.Shared, handle transport.Handler, logger *log.Logger) error {
	s, err := server.New(ctx, cfg, handle, logger)
	if err != nil {
		return fmt.Errorf("server.New(): %w", err)
	}
	defer s.Close()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := server.ServeMetrics(ctx, cfg.MetricsAddr, s.Metrics(), logger); err != nil {
				logger.ErrorMsg("%s\n", err)
			}
		}()
	}

	logger.InfoMsg("Listening on %s (idle timeout %s)\n", s.Addr(), durationString(cfg.Timeout))

	if err := s.Serve(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func durationString(d time.Duration) string {
	if d <= 0 {
		return "off"
	}
	return d.String()
}
