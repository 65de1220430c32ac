package main

import (
	"fmt"
	"time"

	"github.com/panbanda/bigo/internal/cache"
	"github.com/panbanda/bigo/internal/output"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the model estimate cache",
		Subcommands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cache entry count, size and age",
				Action: func(c *cli.Context) error {
					cfg := appConfig(c)
					cc, err := cache.New(cfg.Cache.Dir, cfg.CacheTTL(), true)
					if err != nil {
						return err
					}
					stats, err := cc.GetStats()
					if err != nil {
						return err
					}
					tbl := output.NewTable("Cache: "+cfg.Cache.Dir,
						[]string{"Entries", "Size", "Oldest", "Newest"},
						[][]string{{
							fmt.Sprint(stats.Entries),
							fmt.Sprintf("%d B", stats.TotalSize),
							stats.OldestAge.Round(time.Second).String(),
							stats.NewestAge.Round(time.Second).String(),
						}},
						nil, stats)
					return output.NewWriterFormatter(output.ParseFormat(c.String("format")), c.App.Writer, false).Output(tbl)
				},
			},
			{
				Name:  "clear",
				Usage: "Delete every cached estimate",
				Action: func(c *cli.Context) error {
					cfg := appConfig(c)
					cc, err := cache.New(cfg.Cache.Dir, cfg.CacheTTL(), true)
					if err != nil {
						return err
					}
					if err := cc.Clear(); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Cleared %s\n", cfg.Cache.Dir)
					return nil
				},
			},
		},
	}
}
