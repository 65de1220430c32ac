package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/panbanda/bigo/internal/server"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the estimator over HTTP",
		Description: `Starts the HTTP API:

  POST /analyze   {"code": "..."} -> complexity estimate
  GET  /health    liveness probe
  GET  /metrics   Prometheus metrics (server.metrics)

Stops gracefully on SIGINT or SIGTERM.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from config, :5000)",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Classifier strategy: rule or model (default from config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := appConfig(c)
			if addr := c.String("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			if s := c.String("strategy"); s != "" {
				cfg.Classifier.Strategy = s
			}

			a, err := newAnalyzer(c, cfg)
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(a, cfg.Server, appLogger(c)).Run(ctx)
		},
	}
}
