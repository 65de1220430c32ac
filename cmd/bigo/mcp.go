package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panbanda/bigo/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the estimator
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "bigo": {
        "command": "bigo",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - estimate_complexity   Big-O time and space estimate for Python code
  - list_samples          Built-in reference programs`,
		Action: func(c *cli.Context) error {
			a, err := newAnalyzer(c, appConfig(c))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcpserver.NewServer(version, a).Run(ctx)
		},
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP registry manifest (server.json)",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(data))
					return nil
				},
			},
		},
	}
}
