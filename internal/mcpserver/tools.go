package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/bigo/internal/output"
	"github.com/panbanda/bigo/pkg/analyzer"
	"github.com/panbanda/bigo/pkg/samples"
)

// EstimateInput is the input of estimate_complexity.
type EstimateInput struct {
	Code   string `json:"code,omitempty" jsonschema:"Python source code to analyze."`
	Sample string `json:"sample,omitempty" jsonschema:"Name of a built-in sample to analyze instead of code. See list_samples."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// SamplesInput is the input of list_samples.
type SamplesInput struct {
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

type sampleInfo struct {
	Name  string `json:"name" toon:"name"`
	Title string `json:"title" toon:"title"`
	Time  string `json:"time" toon:"time"`
	Space string `json:"space" toon:"space"`
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	r, renderable := data.(output.Renderable)
	if renderable && format != output.FormatMarkdown {
		data = r.RenderData()
	}

	switch format {
	case output.FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case output.FormatMarkdown:
		if renderable {
			var buf bytes.Buffer
			if err := r.RenderMarkdown(&buf); err != nil {
				return "", err
			}
			return buf.String(), nil
		}
		out, err := output.MarshalTOON(data)
		if err != nil {
			return "", err
		}
		return "```\n" + out + "\n```", nil
	default:
		return output.MarshalTOON(data)
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleEstimate(ctx context.Context, req *mcp.CallToolRequest, input EstimateInput) (*mcp.CallToolResult, any, error) {
	code, name := input.Code, "snippet"
	if input.Sample != "" {
		sample, ok := samples.Get(input.Sample)
		if !ok {
			return toolError("unknown sample " + input.Sample)
		}
		code, name = sample.Code, sample.Name
	}

	res, err := s.analyzer.Analyze(ctx, code)
	if res == nil {
		return toolError(err.Error())
	}
	if res.Failed() {
		return toolError(res.Error)
	}
	return toolResult(output.NewResults([]analyzer.FileResult{{Path: name, Result: res}}), getFormat(input.Format))
}

func (s *Server) handleListSamples(ctx context.Context, req *mcp.CallToolRequest, input SamplesInput) (*mcp.CallToolResult, any, error) {
	var out []sampleInfo
	for _, smp := range samples.All() {
		out = append(out, sampleInfo{Name: smp.Name, Title: smp.Title, Time: smp.Time, Space: smp.Space})
	}
	return toolResult(out, getFormat(input.Format))
}
