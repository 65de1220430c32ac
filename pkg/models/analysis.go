package models

import (
	"encoding/json"
	"strings"
)

// AnalysisRequest is the body accepted by the analyze endpoint.
type AnalysisRequest struct {
	Code string `json:"code" validate:"required"`
}

// Normalize trims surrounding whitespace from the submitted code.
func (r *AnalysisRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
}

// StructuralMetrics are the syntax-tree statistics reported as ast_info.
type StructuralMetrics struct {
	Loops          int      `json:"loops" toon:"loops"`
	RecursiveCalls int      `json:"recursive_calls" toon:"recursive_calls"`
	NestedDepth    int      `json:"nested_depth" toon:"nested_depth"`
	Functions      []string `json:"functions" toon:"functions"`
}

// ComplexityEstimate is a best-effort asymptotic bound with its justification.
type ComplexityEstimate struct {
	TimeComplexity  string  `json:"time_complexity" toon:"time_complexity"`
	SpaceComplexity string  `json:"space_complexity" toon:"space_complexity"`
	Analysis        string  `json:"analysis" toon:"analysis"`
	Confidence      float64 `json:"confidence" toon:"confidence"`
}

// ClampConfidence bounds the confidence to [0, 100].
func (e *ComplexityEstimate) ClampConfidence() {
	switch {
	case e.Confidence < 0:
		e.Confidence = 0
	case e.Confidence > 100:
		e.Confidence = 100
	}
}

// AnalysisResult is either a successful estimate with its metrics, or an error.
// Exactly one of the two shapes is serialized.
type AnalysisResult struct {
	ComplexityEstimate
	ASTInfo  *StructuralMetrics `json:"ast_info,omitempty" toon:"ast_info"`
	Warnings []string           `json:"warnings,omitempty" toon:"warnings"`
	Error    string             `json:"error,omitempty" toon:"error"`
}

// NewResult assembles a successful result.
func NewResult(est ComplexityEstimate, metrics StructuralMetrics, warnings []string) *AnalysisResult {
	if metrics.Functions == nil {
		metrics.Functions = []string{}
	}
	est.ClampConfidence()
	return &AnalysisResult{
		ComplexityEstimate: est,
		ASTInfo:            &metrics,
		Warnings:           warnings,
	}
}

// ErrorResult flattens an error into the failure shape.
func ErrorResult(err error) *AnalysisResult {
	return &AnalysisResult{Error: err.Error()}
}

// Failed reports whether the result carries an error.
func (r *AnalysisResult) Failed() bool {
	return r.Error != ""
}

type successBody struct {
	ComplexityEstimate
	ASTInfo  *StructuralMetrics `json:"ast_info"`
	Warnings []string           `json:"warnings,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// MarshalJSON emits only the error field for failures, and never an error field on success.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(errorBody{Error: r.Error})
	}
	return json.Marshal(successBody{
		ComplexityEstimate: r.ComplexityEstimate,
		ASTInfo:            r.ASTInfo,
		Warnings:           r.Warnings,
	})
}
