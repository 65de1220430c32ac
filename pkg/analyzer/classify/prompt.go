package classify

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/panbanda/bigo/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptFrontmatter is parsed from YAML frontmatter in prompt files.
type promptFrontmatter struct {
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
	System      string `yaml:"system"`
}

// Prompt is a chat prompt template with its system message.
type Prompt struct {
	Name        string
	Description string
	Version     string
	System      string
	tmpl        *template.Template
}

// promptData is what a prompt template is rendered with.
type promptData struct {
	Code     string
	Metrics  models.StructuralMetrics
	Baseline models.ComplexityEstimate
	Cycles   [][]string
}

// LoadPrompt reads an embedded prompt by name.
func LoadPrompt(name string) (*Prompt, error) {
	content, err := promptFiles.ReadFile("prompts/" + name + ".md")
	if err != nil {
		return nil, fmt.Errorf("prompt %q: %w", name, err)
	}

	fm, body, err := parseFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("prompt %q: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(template.FuncMap{"join": strings.Join}).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("prompt %q: %w", name, err)
	}

	return &Prompt{
		Name:        name,
		Description: fm.Description,
		Version:     fm.Version,
		System:      fm.System,
		tmpl:        tmpl,
	}, nil
}

// Render executes the template.
func (p *Prompt) Render(data promptData) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", p.Name, err)
	}
	return buf.String(), nil
}

// parseFrontmatter splits YAML frontmatter from the body.
func parseFrontmatter(content []byte) (promptFrontmatter, string, error) {
	var fm promptFrontmatter
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return fm, string(content), nil
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return fm, string(content), nil
	}

	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return fm, "", fmt.Errorf("frontmatter: %w", err)
	}
	return fm, strings.TrimPrefix(string(rest[end+5:]), "\n"), nil
}
