package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/panbanda/bigo/internal/cache"
	"github.com/panbanda/bigo/internal/logging"
	"github.com/panbanda/bigo/pkg/analyzer"
	"github.com/panbanda/bigo/pkg/analyzer/classify"
	"github.com/panbanda/bigo/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

const (
	metaConfig = "config"
	metaLogger = "logger"
)

func newApp() *cli.App {
	return &cli.App{
		Name:     "bigo",
		Usage:    "Estimate the Big-O complexity of Python code",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `bigo parses Python source, measures loops, recursion and nesting, and
estimates asymptotic time and space complexity with a confidence score.

Run it on files, serve it over HTTP, or expose it to LLM tools over MCP.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"BIGO_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the model estimate cache",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			analyzeCmd(),
			serveCmd(),
			mcpCmd(),
			samplesCmd(),
			configCmd(),
			cacheCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// setup loads the config and installs the logger for every command.
func setup(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
	if c.Bool("no-color") {
		color.NoColor = true
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaLogger] = logger
	return nil
}

// loadConfig reads path, or the discovered config file, or the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.Find()
	}
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func appConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func appLogger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[metaLogger].(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// newAnalyzer wires the configured classifier, cache and limits.
func newAnalyzer(c *cli.Context, cfg *config.Config) (*analyzer.Analyzer, error) {
	logger := appLogger(c)

	var store classify.Store
	if cfg.Classifier.Strategy == classify.StrategyModel && cfg.Cache.Enabled && !c.Bool("no-cache") {
		cc, err := cache.New(cfg.Cache.Dir, cfg.CacheTTL(), true)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		store = cc
	}

	classifier, err := classify.FromConfig(cfg.Classifier, store, logger)
	if err != nil {
		return nil, err
	}

	return analyzer.New(
		analyzer.WithClassifier(classifier),
		analyzer.WithLimits(analyzer.LimitsFromConfig(cfg.Analysis)),
		analyzer.WithLogger(logger),
	), nil
}
