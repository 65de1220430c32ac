package classify

import (
	"testing"

	"github.com/panbanda/bigo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompt(t *testing.T) {
	p, err := LoadPrompt("estimate")
	require.NoError(t, err)

	assert.Equal(t, "estimate", p.Name)
	assert.Equal(t, "1", p.Version)
	assert.NotEmpty(t, p.Description)
	assert.Contains(t, p.System, "JSON")
}

func TestLoadPromptMissing(t *testing.T) {
	_, err := LoadPrompt("does-not-exist")
	assert.Error(t, err)
}

func TestPromptRender(t *testing.T) {
	p, err := LoadPrompt("estimate")
	require.NoError(t, err)

	out, err := p.Render(promptData{
		Code: "def f(n):\n    return n\n",
		Metrics: models.StructuralMetrics{
			Loops:          3,
			RecursiveCalls: 1,
			NestedDepth:    2,
			Functions:      []string{"f", "g"},
		},
		Baseline: models.ComplexityEstimate{TimeComplexity: "O(n)", SpaceComplexity: "O(1)", Analysis: "one loop"},
		Cycles:   [][]string{{"a", "b"}, {"c", "d"}},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "def f(n):")
	assert.Contains(t, out, "Number of loops: 3")
	assert.Contains(t, out, "Recursive function calls: 1")
	assert.Contains(t, out, "Maximum nesting depth: 2")
	assert.Contains(t, out, "Functions found: f, g")
	assert.Contains(t, out, "Mutually recursive groups: a, b; c, d")
	assert.Contains(t, out, "estimated time O(n)")
	assert.NotContains(t, out, "{{")
}

func TestPromptRenderWithoutCycles(t *testing.T) {
	p, err := LoadPrompt("estimate")
	require.NoError(t, err)

	out, err := p.Render(promptData{Code: "x = 1"})
	require.NoError(t, err)
	assert.NotContains(t, out, "Mutually recursive")
}

func TestParseFrontmatter(t *testing.T) {
	fm, body, err := parseFrontmatter([]byte("---\ndescription: d\nversion: \"2\"\n---\nbody text\n"))
	require.NoError(t, err)
	assert.Equal(t, "d", fm.Description)
	assert.Equal(t, "2", fm.Version)
	assert.Equal(t, "body text\n", body)

	fm, body, err = parseFrontmatter([]byte("no frontmatter"))
	require.NoError(t, err)
	assert.Empty(t, fm.Version)
	assert.Equal(t, "no frontmatter", body)

	_, _, err = parseFrontmatter([]byte("---\nversion: [unclosed\n---\nbody"))
	assert.Error(t, err)
}
