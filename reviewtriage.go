package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/reviewtriage/cmd"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "reviewtriage",
		Usage:   "Review triage pipeline: classify feed items, queue negatives, triage them from chat",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.IngestCommand(),
			cmd.ConfigCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
