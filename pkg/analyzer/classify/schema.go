package classify

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/panbanda/bigo/pkg/models"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const estimateSchemaURL = "estimate.schema.json"

const estimateSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["time_complexity", "space_complexity", "analysis", "confidence"],
  "properties": {
    "time_complexity":  {"type": "string", "pattern": "^\\s*[OoΘθ]\\(.+\\)\\s*$"},
    "space_complexity": {"type": "string", "pattern": "^\\s*[OoΘθ]\\(.+\\)\\s*$"},
    "analysis":         {"type": "string", "minLength": 1},
    "confidence":       {"type": "number", "minimum": 0, "maximum": 100}
  }
}`

var (
	schemaOnce     sync.Once
	estimateSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(estimateSchemaJSON))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(estimateSchemaURL, doc); err != nil {
			schemaErr = err
			return
		}
		estimateSchema, schemaErr = c.Compile(estimateSchemaURL)
	})
	return estimateSchema, schemaErr
}

// stripFences removes a markdown code fence around a model reply.
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// parseEstimate validates a model reply against the estimate schema.
func parseEstimate(text string) (models.ComplexityEstimate, error) {
	var est models.ComplexityEstimate

	sch, err := compiledSchema()
	if err != nil {
		return est, fmt.Errorf("compile estimate schema: %w", err)
	}

	body := stripFences(text)
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(body))
	if err != nil {
		return est, fmt.Errorf("model reply is not JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return est, fmt.Errorf("model reply does not match the estimate schema: %w", err)
	}

	if err := json.Unmarshal([]byte(body), &est); err != nil {
		return est, fmt.Errorf("decode model reply: %w", err)
	}
	return est, nil
}
