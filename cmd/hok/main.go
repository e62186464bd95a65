// Command hok is a thin urfave/cli adapter over the core installation
// engine: it parses flags, builds the matching core request type, drives
// the event channel to render progress, and prints the result. No
// business logic lives here (SPEC_FULL.md §8).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/hok-pm/hok/internal/xlog"
)

func main() {
	app := cli.NewApp()
	app.Name = "hok"
	app.Usage = "a command-line package installer for Windows portables"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "root", Usage: "override the default root directory"},
	}
	app.Before = func(c *cli.Context) error {
		env, err := newEnv(c.String("root"))
		if err != nil {
			return err
		}
		c.App.Metadata["env"] = env
		return nil
	}
	app.Commands = []cli.Command{
		searchCommand,
		installCommand,
		uninstallCommand,
		updateCommand,
		holdCommand,
		unholdCommand,
		cacheCommand,
		bucketCommand,
		configCommand,
	}

	defer xlog.Flush()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "hok:", err)
		os.Exit(1)
	}
}

func envFromContext(c *cli.Context) *env {
	return c.App.Metadata["env"].(*env)
}
