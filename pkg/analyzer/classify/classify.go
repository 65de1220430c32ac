// Package classify maps extracted structure to time and space complexity
// classes.
//
// Two strategies implement Classifier. RuleBased applies a deterministic rule
// table and is always available. ModelAssisted asks an OpenAI-compatible chat
// model for an estimate and reconciles it with the rule baseline, falling back
// to the baseline whenever the model is unavailable or answers badly.
package classify

import (
	"context"

	"github.com/panbanda/bigo/pkg/analyzer/extract"
	"github.com/panbanda/bigo/pkg/models"
)

// Strategy names accepted by configuration.
const (
	StrategyRule  = "rule"
	StrategyModel = "model"
)

// Input is what a classifier sees: the source and its extracted profile.
type Input struct {
	Code    string
	Profile *extract.Profile
}

// Classifier produces a complexity estimate from structural evidence.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, in Input) (models.ComplexityEstimate, error)
}

var (
	_ Classifier = (*RuleBased)(nil)
	_ Classifier = (*ModelAssisted)(nil)
)
