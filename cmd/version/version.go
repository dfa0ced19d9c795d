// Package version provides the version command.
package version

import (
	"context"
	"fmt"
	"runtime"

	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags "-X ...version.Version=...".
var Version = "unknown"

// String returns the version line printed by the command.
func String() string {
	return fmt.Sprintf("gorelay %s (%s %s/%s)", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Program version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Println(String())
			return nil
		},
		Flags: []cli.Flag{},
	}
}
