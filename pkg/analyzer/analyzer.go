// Package analyzer runs the complexity pipeline: parse, lower, extract,
// classify and assemble the result.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panbanda/bigo/pkg/analyzer/classify"
	"github.com/panbanda/bigo/pkg/analyzer/extract"
	"github.com/panbanda/bigo/pkg/ast/treesitter"
	"github.com/panbanda/bigo/pkg/config"
	"github.com/panbanda/bigo/pkg/models"
	"github.com/panbanda/bigo/pkg/parser"
)

// Limits are the resource ceilings for one analysis. Zero disables a ceiling.
type Limits struct {
	MaxCodeBytes int
	MaxNodes     int
	MaxDepth     int
	Timeout      time.Duration
}

// LimitsFromConfig converts the analysis config section.
func LimitsFromConfig(c config.AnalysisConfig) Limits {
	return Limits{
		MaxCodeBytes: c.MaxCodeBytes,
		MaxNodes:     c.MaxNodes,
		MaxDepth:     c.MaxDepth,
		Timeout:      time.Duration(c.Timeout) * time.Millisecond,
	}
}

// Analyzer estimates the complexity of Python snippets. It holds no state
// between calls and is safe for concurrent use when its classifier is.
type Analyzer struct {
	classifier classify.Classifier
	limits     Limits
	logger     *slog.Logger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithClassifier sets the classification strategy.
func WithClassifier(c classify.Classifier) Option {
	return func(a *Analyzer) {
		a.classifier = c
	}
}

// WithLimits sets the resource ceilings.
func WithLimits(l Limits) Option {
	return func(a *Analyzer) {
		a.limits = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates an analyzer with the rule-based classifier and default limits.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		classifier: classify.NewRuleBased(),
		limits:     LimitsFromConfig(config.DefaultConfig().Analysis),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Strategy names the classifier in use.
func (a *Analyzer) Strategy() string {
	return a.classifier.Name()
}

// Analyze runs the pipeline on code.
//
// Empty code yields ErrEmptyCode and no result. Malformed code or code beyond
// the resource limits yields an error-shaped result together with the
// *parser.ParseError or *parser.LimitError behind it; the classifier is not
// invoked. Any other error means no result was produced.
func (a *Analyzer) Analyze(ctx context.Context, code string) (*models.AnalysisResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	psr := parser.New(
		parser.WithMaxSourceBytes(a.limits.MaxCodeBytes),
		parser.WithTimeout(a.limits.Timeout),
	)
	defer psr.Close()

	parsed, err := psr.Parse(ctx, []byte(code))
	if err != nil {
		return a.reject(code, err)
	}
	defer parsed.Tree.Close()

	tree, err := treesitter.Lower(parsed, treesitter.Limits{
		MaxNodes: a.limits.MaxNodes,
		MaxDepth: a.limits.MaxDepth,
	})
	if err != nil {
		return a.reject(code, err)
	}

	profile := extract.Extract(tree)

	est, err := a.classifier.Classify(ctx, classify.Input{Code: code, Profile: profile})
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	var warnings []string
	for _, w := range tree.Warnings {
		warnings = append(warnings, w.String())
	}

	a.logger.Debug("analyzed snippet",
		"fingerprint", Fingerprint(code),
		"strategy", a.classifier.Name(),
		"nodes", tree.Nodes,
		"time", est.TimeComplexity,
		"space", est.SpaceComplexity,
		"confidence", est.Confidence)

	return models.NewResult(est, profile.Metrics, warnings), nil
}

// reject turns pipeline failures into the error-shaped result.
func (a *Analyzer) reject(code string, err error) (*models.AnalysisResult, error) {
	var pe *parser.ParseError
	var le *parser.LimitError
	if errors.As(err, &pe) || errors.As(err, &le) {
		a.logger.Debug("snippet rejected",
			"fingerprint", Fingerprint(code),
			"kind", ErrorKind(err),
			"error", err)
		return models.ErrorResult(err), err
	}
	return nil, err
}
