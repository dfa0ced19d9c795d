package main

import (
	"context"
	"os"
	"time"

	"dominicbreuker/gorelay/cmd/connect"
	"dominicbreuker/gorelay/cmd/forward"
	"dominicbreuker/gorelay/cmd/listen"
	"dominicbreuker/gorelay/cmd/shared"
	"dominicbreuker/gorelay/cmd/version"
	"dominicbreuker/gorelay/pkg/log"

	"github.com/urfave/cli/v3"
)

const shutdownGrace = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared.SetupSignalHandling(cancel, shutdownGrace)

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.NewLogger(false).ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "gorelay",
		Usage: "TCP echo, framing and relay services",
		Commands: []*cli.Command{
			listen.GetCommand(),
			forward.GetCommand(),
			connect.GetCommand(),
			version.GetCommand(),
		},
	}
}
