package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/bigo/internal/output"
	"github.com/panbanda/bigo/internal/progress"
	"github.com/panbanda/bigo/internal/remote"
	"github.com/panbanda/bigo/internal/vcs"
	"github.com/panbanda/bigo/pkg/analyzer"
	"github.com/panbanda/bigo/pkg/analyzer/classify"
	"github.com/panbanda/bigo/pkg/config"
	"github.com/panbanda/bigo/pkg/models"
	"github.com/panbanda/bigo/pkg/samples"
	"github.com/panbanda/bigo/pkg/source"
	"github.com/panbanda/bigo/pkg/watch"
	"github.com/urfave/cli/v2"
)

// stdinPath names code read from standard input.
const stdinPath = "-"

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Estimate the complexity of Python files or snippets",
		ArgsUsage: "[file|dir|-]... | owner/repo[@ref]",
		Description: `Analyzes each Python file (directories are searched for *.py) and prints
the estimated time and space complexity. Use - to read code from stdin.

Examples:
  bigo analyze algo.py
  bigo analyze --ref HEAD~1 src/
  bigo analyze --watch src/
  bigo analyze TheAlgorithms/Python@master
  bigo analyze --sample merge_sort
  echo 'for i in range(n): print(i)' | bigo analyze -`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "code",
				Usage: "Analyze this code instead of files",
			},
			&cli.StringFlag{
				Name:  "sample",
				Usage: "Analyze a built-in sample (see 'bigo samples')",
			},
			&cli.StringFlag{
				Name:  "ref",
				Usage: "Read files from this git revision instead of the working tree",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Classifier strategy: rule or model (default from config)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Re-analyze Python files under the given directory when they change",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent analyses (0 = 2x CPUs, default from config)",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	cfg := appConfig(c)
	if s := c.String("strategy"); s != "" {
		cfg.Classifier.Strategy = s
	}
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}

	a, err := newAnalyzer(c, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("watch") {
		return runWatch(ctx, c, cfg, a)
	}

	var results []analyzer.FileResult
	switch {
	case c.IsSet("code"):
		results = []analyzer.FileResult{analyzeSnippet(ctx, a, "code", c.String("code"))}
	case c.IsSet("sample"):
		s, ok := samples.Get(c.String("sample"))
		if !ok {
			return fmt.Errorf("unknown sample %q (available: %v)", c.String("sample"), samples.Names())
		}
		results = []analyzer.FileResult{analyzeSnippet(ctx, a, s.Name, s.Code)}
	case c.Args().Len() == 1 && c.Args().First() == stdinPath:
		code, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		results = []analyzer.FileResult{analyzeSnippet(ctx, a, "stdin", string(code))}
	case c.Args().Len() > 0:
		results, err = analyzeFiles(ctx, c, cfg, a)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("nothing to analyze: pass files, -, --code or --sample")
	}

	if err := writeResults(c, cfg, results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Result.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d inputs could not be analyzed", failed, len(results)), 1)
	}
	return nil
}

// analyzeSnippet turns every outcome into a result so that a single input
// renders like a batch entry.
func analyzeSnippet(ctx context.Context, a *analyzer.Analyzer, name, code string) analyzer.FileResult {
	var spinner *progress.Tracker
	if a.Strategy() == classify.StrategyModel && !color.NoColor {
		spinner = progress.NewSpinner(os.Stderr, "Estimating")
	}
	res, err := a.Analyze(ctx, code)
	if spinner != nil {
		spinner.FinishSuccess()
	}
	if res == nil {
		res = models.ErrorResult(err)
	}
	return analyzer.FileResult{Path: name, Result: res}
}

// openSource picks where files are read from: a clone of a remote
// repository, a revision of the enclosing repository, or the working tree.
func openSource(ctx context.Context, c *cli.Context) (source.Source, []string, func(), error) {
	args := c.Args().Slice()
	noop := func() {}

	if len(args) == 1 {
		rs, err := remote.Parse(args[0])
		if err != nil {
			return nil, nil, noop, err
		}
		if rs != nil {
			if rs.Ref == "" {
				rs.Ref = c.String("ref")
			}
			appLogger(c).Info("cloning repository", "url", rs.URL, "ref", rs.Ref)
			progressOut := io.Discard
			if c.Bool("verbose") {
				progressOut = c.App.ErrWriter
			}
			if err := rs.Clone(ctx, progressOut, rs.Ref == ""); err != nil {
				return nil, nil, noop, err
			}
			repo, err := vcs.DefaultOpener().PlainOpen(rs.CloneDir)
			if err != nil {
				rs.Cleanup()
				return nil, nil, noop, fmt.Errorf("open clone: %w", err)
			}
			tree, err := repo.Resolve("HEAD")
			if err != nil {
				rs.Cleanup()
				return nil, nil, noop, err
			}
			return source.NewTree(tree), []string{"."}, rs.Cleanup, nil
		}
	}

	if ref := c.String("ref"); ref != "" {
		repo, err := vcs.DefaultOpener().PlainOpenWithDetect(".")
		if err != nil {
			return nil, nil, noop, fmt.Errorf("open repository: %w", err)
		}
		tree, err := repo.Resolve(ref)
		if err != nil {
			return nil, nil, noop, err
		}
		return source.NewTree(tree), args, noop, nil
	}

	return source.NewFilesystem(), args, noop, nil
}

func analyzeFiles(ctx context.Context, c *cli.Context, cfg *config.Config, a *analyzer.Analyzer) ([]analyzer.FileResult, error) {
	src, roots, cleanup, err := openSource(ctx, c)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	found, err := src.Files(roots)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range found {
		if !cfg.ShouldExclude(f) {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Python files found")
	}

	var bar *progress.Tracker
	tracker := analyzer.NewTracker(nil)
	if len(files) > 1 && !color.NoColor {
		bar = progress.NewTracker(os.Stderr, "Analyzing", len(files))
		tracker = analyzer.NewTracker(bar.Step)
	}

	results, err := a.AnalyzeFiles(analyzer.WithTracker(ctx, tracker), files,
		func(_ context.Context, path string) ([]byte, error) {
			return src.Read(path)
		}, cfg.Analysis.Workers)

	if bar != nil {
		if err != nil {
			bar.FinishError(err)
		} else {
			bar.FinishRejected(tracker.Rejected(), tracker.Total())
		}
	} else if err != nil {
		appLogger(c).Warn("some files were skipped", "error", err)
	}
	if len(results) == 0 && err != nil {
		return nil, err
	}
	return results, nil
}

// runWatch analyzes each Python file under one directory as it changes until
// interrupted.
func runWatch(ctx context.Context, c *cli.Context, cfg *config.Config, a *analyzer.Analyzer) error {
	if c.Args().Len() != 1 || c.IsSet("ref") || c.IsSet("code") || c.IsSet("sample") {
		return fmt.Errorf("--watch takes exactly one directory and no --ref, --code or --sample")
	}
	root := c.Args().First()
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("--watch: %s is not a directory", root)
	}

	w, err := watch.NewWatcher(root, cfg, 0, c.App.ErrWriter)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	logger := appLogger(c)
	w.SetCallback(func(path string) {
		code, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("read changed file", "path", path, "error", err)
			return
		}
		result := analyzeSnippet(ctx, a, path, string(code))
		if err := writeResults(c, cfg, []analyzer.FileResult{result}); err != nil {
			logger.Warn("write results", "path", path, "error", err)
		}
	})

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func writeResults(c *cli.Context, cfg *config.Config, results []analyzer.FileResult) error {
	format := cfg.Output.Format
	if f := c.String("format"); f != "" {
		format = f
	}

	colored := cfg.Output.Color && !color.NoColor
	formatter := output.NewWriterFormatter(output.ParseFormat(format), c.App.Writer, colored)
	if path := c.String("output"); path != "" {
		f, err := output.NewFormatter(output.ParseFormat(format), path, false)
		if err != nil {
			return err
		}
		defer f.Close()
		formatter = f
	}

	return formatter.Output(output.NewResults(results))
}
