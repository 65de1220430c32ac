package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisRequestNormalize(t *testing.T) {
	req := AnalysisRequest{Code: "\n\t  x = 1  \n"}
	req.Normalize()
	if req.Code != "x = 1" {
		t.Errorf("Normalize() = %q, want %q", req.Code, "x = 1")
	}
}

func TestResultMarshalSuccess(t *testing.T) {
	res := NewResult(ComplexityEstimate{
		TimeComplexity:  "O(log n)",
		SpaceComplexity: "O(1)",
		Analysis:        "halving loop",
		Confidence:      140,
	}, StructuralMetrics{Loops: 1, NestedDepth: 1, Functions: []string{"binary_search"}}, nil)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))

	assert.Equal(t, "O(log n)", body["time_complexity"])
	assert.Equal(t, float64(100), body["confidence"], "confidence is clamped")
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "warnings")

	info, ok := body["ast_info"].(map[string]any)
	require.True(t, ok, "ast_info should be an object")
	assert.Equal(t, float64(1), info["loops"])
	assert.Equal(t, float64(0), info["recursive_calls"])
	assert.Equal(t, []any{"binary_search"}, info["functions"])
}

func TestResultMarshalEmptyFunctionsIsArray(t *testing.T) {
	res := NewResult(ComplexityEstimate{TimeComplexity: "O(1)", SpaceComplexity: "O(1)"}, StructuralMetrics{}, nil)
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"functions":[]`)
}

func TestResultMarshalError(t *testing.T) {
	res := ErrorResult(errors.New("syntax error at line 2, column 5"))
	require.True(t, res.Failed())

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"syntax error at line 2, column 5"}`, string(data))
}
