package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/panbanda/bigo/pkg/analyzer"
	"github.com/panbanda/bigo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []analyzer.FileResult {
	return []analyzer.FileResult{
		{
			Path: "sort.py",
			Result: models.NewResult(models.ComplexityEstimate{
				TimeComplexity:  "O(n^2)",
				SpaceComplexity: "O(1)",
				Analysis:        "Nested loops over the input.",
				Confidence:      90,
			}, models.StructuralMetrics{Loops: 2, NestedDepth: 2, Functions: []string{"bubble_sort"}},
				[]string{"line 4: lambda body is not analyzed"}),
		},
		{
			Path:   "broken.py",
			Result: models.ErrorResult(errors.New("syntax error at line 1, column 7: unexpected \":\"")),
		},
	}
}

func TestResultsRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewResults(sampleResults()).RenderText(&buf, false))
	out := buf.String()

	assert.Contains(t, out, "Complexity Estimates")
	assert.Contains(t, out, "sort.py")
	assert.Contains(t, out, "O(n^2)")
	assert.Contains(t, out, "90%")
	assert.Contains(t, out, "Nested loops over the input.")
	assert.Contains(t, out, "Functions: bubble_sort")
	assert.Contains(t, out, "Warning: line 4: lambda body is not analyzed")
	assert.Contains(t, out, "Error: syntax error at line 1")
}

func TestResultsRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewResults(sampleResults()).RenderMarkdown(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Complexity Estimates\n"))
	assert.Contains(t, out, "| sort.py | O(n^2) | O(1) | 90% | 2 | 0 | 2 |")
	assert.Contains(t, out, "| broken.py | error |")
	assert.Contains(t, out, "## sort.py")
	assert.Contains(t, out, "| 2 files (1 failed) | worst O(n^2) |  | median 90% |")
}

func TestResultsFooterOnlyForBatches(t *testing.T) {
	assert.Nil(t, NewResults(sampleResults()[:1]).footer())
	assert.Len(t, NewResults(sampleResults()).footer(), len(resultHeaders))
}

func TestResultsRenderData(t *testing.T) {
	files := sampleResults()

	single := NewResults(files[:1]).RenderData()
	assert.Same(t, files[0].Result, single)

	var buf bytes.Buffer
	require.NoError(t, NewWriterFormatter(FormatJSON, &buf, false).Output(NewResults(files)))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "sort.py", decoded[0]["path"])
	failed := decoded[1]["result"].(map[string]any)
	assert.Contains(t, failed["error"], "syntax error")
	assert.NotContains(t, failed, "time_complexity")
}

func TestComplexityColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	assert.Equal(t, color.GreenString("O(1)"), ComplexityColor("O(1)"))
	assert.Equal(t, color.GreenString("O(log n)"), ComplexityColor("O(log n)"))
	assert.Equal(t, color.YellowString("O(n)"), ComplexityColor("O(n)"))
	assert.Equal(t, color.YellowString("O(n log n)"), ComplexityColor("O(n log n)"))
	assert.Equal(t, color.RedString("O(n^2)"), ComplexityColor("O(n^2)"))
	assert.Equal(t, color.RedString("O(2^n)"), ComplexityColor("O(2^n)"))
	assert.Equal(t, "unknown", ComplexityColor("unknown"))
}
