package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"
	"k8s.io/apimachinery/pkg/util/duration"

	"github.com/hok-pm/hok/bucket"
	"github.com/hok-pm/hok/query"
	"github.com/hok-pm/hok/sync"
)

var searchCommand = cli.Command{
	Name:      "search",
	Usage:     "search synced manifests for a pattern",
	ArgsUsage: "PATTERN",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.NewExitError("search takes exactly one PATTERN argument", 1)
		}
		env := envFromContext(c)
		candidates, err := env.engine.QuerySynced(c.Args().First(), query.Options{})
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Println("no matches found")
			return nil
		}
		for _, cand := range candidates {
			fmt.Printf("%s/%s (%s)\n", cand.Bucket, cand.Name, cand.Manifest.Version())
		}
		return nil
	},
}

var installCommand = cli.Command{
	Name:      "install",
	Usage:     "install one or more packages",
	ArgsUsage: "PACKAGE...",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "yes, y", Usage: "assume yes on the confirmation prompt"},
		cli.BoolFlag{Name: "no-dependencies", Usage: "skip dependency expansion"},
		cli.BoolFlag{Name: "independent", Usage: "escape an existing hold"},
		cli.BoolFlag{Name: "no-hash-check", Usage: "skip the cache-file hash check"},
		cli.BoolFlag{Name: "download-only", Usage: "fetch and verify only, skip the commit step"},
		cli.BoolFlag{Name: "ignore-failure", Usage: "continue past a failed package instead of stopping"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.NewExitError("install requires at least one package name", 1)
		}
		env := envFromContext(c)
		tx, err := env.planner.PlanInstall(c.Args(), sync.PlanOptions{
			NoDependencies: c.Bool("no-dependencies"),
			EscapeHold:     c.Bool("independent"),
		})
		if err != nil {
			return err
		}
		if len(tx.Items) == 0 {
			fmt.Println("nothing to do")
			return nil
		}
		if !c.Bool("yes") && !confirmTransaction(tx) {
			fmt.Println("aborted")
			return nil
		}

		sink := newProgressSink()
		defer sink.Close()
		exec := env.newExecutor(sink)
		failed, err := exec.Execute(context.Background(), tx, sync.ExecuteOptions{
			NoHashCheck:   c.Bool("no-hash-check"),
			DownloadOnly:  c.Bool("download-only"),
			IgnoreFailure: c.Bool("ignore-failure"),
		})
		if len(failed) > 0 {
			fmt.Printf("failed: %s\n", strings.Join(failed, ", "))
		}
		return err
	},
}

var uninstallCommand = cli.Command{
	Name:      "uninstall",
	Usage:     "remove one or more installed packages",
	ArgsUsage: "PACKAGE...",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "yes, y", Usage: "assume yes on the confirmation prompt"},
		cli.BoolFlag{Name: "cascade", Usage: "also remove dependencies left with no other dependent"},
		cli.BoolFlag{Name: "no-dependent-check", Usage: "skip the dependent-package safety check"},
		cli.BoolFlag{Name: "independent", Usage: "escape a held dependency during cascade"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.NewExitError("uninstall requires at least one package name", 1)
		}
		env := envFromContext(c)
		tx, err := env.planner.PlanRemove(c.Args(), sync.PlanOptions{
			Cascade:          c.Bool("cascade"),
			NoDependentCheck: c.Bool("no-dependent-check"),
			EscapeHold:       c.Bool("independent"),
		})
		if err != nil {
			return err
		}
		if !c.Bool("yes") && !confirmTransaction(tx) {
			fmt.Println("aborted")
			return nil
		}
		for _, name := range tx.Remove {
			if err := os.RemoveAll(filepath.Join(env.cfg.AppsDir(), name)); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", name)
		}
		return nil
	},
}

var updateCommand = cli.Command{
	Name:  "update",
	Usage: "update every bucket to its remote HEAD",
	Action: func(c *cli.Context) error {
		env := envFromContext(c)

		if env.cfg.LastUpdate != "" {
			if prev, err := time.Parse("2006-01-02T15:04:05.000000Z", env.cfg.LastUpdate); err == nil {
				fmt.Printf("last updated %s ago\n", duration.HumanDuration(time.Since(prev)))
			}
		}

		sink := newProgressSink()
		defer sink.Close()
		results, err := env.buckets.Update(context.Background(), sink)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("%s: update failed: %v\n", r.Name, r.Err)
			}
		}
		if bucket.Updated(results) {
			env.cfg.LastUpdate = bucket.LastUpdateStamp(time.Now())
			if err := env.cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Printf("updated %d bucket(s)\n", len(results))
		return nil
	},
}

var holdCommand = cli.Command{
	Name:      "hold",
	Usage:     "pin an installed package's version against upgrade",
	ArgsUsage: "PACKAGE",
	Action:    holdAction(true),
}

var unholdCommand = cli.Command{
	Name:      "unhold",
	Usage:     "release a package previously held",
	ArgsUsage: "PACKAGE",
	Action:    holdAction(false),
}

func holdAction(flag bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.NewExitError("hold/unhold takes exactly one package name", 1)
		}
		env := envFromContext(c)
		if err := env.planner.Hold(c.Args().First(), flag); err != nil {
			return err
		}
		verb := "held"
		if !flag {
			verb = "unheld"
		}
		fmt.Printf("%s %s\n", c.Args().First(), verb)
		return nil
	}
}

var cacheCommand = cli.Command{
	Name:  "cache",
	Usage: "inspect or clear the download cache",
	Subcommands: []cli.Command{
		{
			Name:      "clear",
			Usage:     "remove cache entries matching a query (default: all)",
			ArgsUsage: "[QUERY]",
			Action: func(c *cli.Context) error {
				env := envFromContext(c)
				q := c.Args().First()
				if err := env.cache.Remove(q); err != nil {
					return err
				}
				fmt.Println("cache cleared")
				return nil
			},
		},
		{
			Name:  "list",
			Usage: "list cache entries",
			Action: func(c *cli.Context) error {
				env := envFromContext(c)
				entries, err := env.cache.Enumerate(c.Args().First())
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Println(e.Filename())
				}
				return nil
			},
		},
	},
}

var bucketCommand = cli.Command{
	Name:  "bucket",
	Usage: "manage manifest buckets",
	Subcommands: []cli.Command{
		{
			Name:      "add",
			ArgsUsage: "NAME URL",
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					return cli.NewExitError("bucket add requires NAME and URL", 1)
				}
				env := envFromContext(c)
				return env.buckets.Add(context.Background(), c.Args().Get(0), c.Args().Get(1))
			},
		},
		{
			Name:      "rm",
			ArgsUsage: "NAME",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return cli.NewExitError("bucket rm requires NAME", 1)
				}
				env := envFromContext(c)
				return env.buckets.Remove(c.Args().First())
			},
		},
		{
			Name: "list",
			Action: func(c *cli.Context) error {
				env := envFromContext(c)
				buckets, err := env.buckets.List()
				if err != nil {
					return err
				}
				for _, b := range buckets {
					fmt.Printf("%s\t%s\n", b.Name, b.RemoteURL)
				}
				return nil
			},
		},
	},
}

var configCommand = cli.Command{
	Name:  "config",
	Usage: "get or set a configuration key",
	Subcommands: []cli.Command{
		{
			Name:      "get",
			ArgsUsage: "KEY",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return cli.NewExitError("config get requires KEY", 1)
				}
				env := envFromContext(c)
				v, ok := env.cfg.Get(c.Args().First())
				if !ok {
					return cli.NewExitError(fmt.Sprintf("unknown key %q", c.Args().First()), 1)
				}
				fmt.Println(v)
				return nil
			},
		},
		{
			Name:      "set",
			ArgsUsage: "KEY VALUE",
			Action: func(c *cli.Context) error {
				if c.NArg() != 2 {
					return cli.NewExitError("config set requires KEY and VALUE", 1)
				}
				env := envFromContext(c)
				if err := env.cfg.Set(c.Args().Get(0), c.Args().Get(1)); err != nil {
					return err
				}
				return env.cfg.Save()
			},
		},
	},
}

// confirmTransaction prints tx's summary and reads a y/n answer from
// stdin - the CLI's own confirmation surface, distinct from
// sync.Executor.Confirm's channel handshake, which exists for embedders
// driving the event/command bus instead of a terminal (SPEC_FULL.md §8,
// spec.md §5 "AssumeYes bypass left to the caller").
func confirmTransaction(tx *sync.Transaction) bool {
	for _, item := range tx.Items {
		fmt.Printf("%s %s\n", item.Action, sync.Ident(item.Candidate))
	}
	for _, name := range tx.Remove {
		fmt.Printf("remove %s\n", name)
	}
	fmt.Print("proceed? [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
