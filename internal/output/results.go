package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/bigo/pkg/analyzer"
	"github.com/panbanda/bigo/pkg/analyzer/classify"
	"github.com/panbanda/bigo/pkg/models"
	"github.com/panbanda/bigo/pkg/stats"
)

// ComplexityColor colors a complexity class by growth: green up to
// logarithmic, yellow up to linearithmic, red beyond.
func ComplexityColor(class string) string {
	c, ok := classify.ParseClass(class)
	if !ok {
		return class
	}
	switch {
	case c.Compare(classify.Logarithmic) <= 0:
		return color.GreenString(class)
	case c.Compare(classify.Linearithmic) <= 0:
		return color.YellowString(class)
	default:
		return color.RedString(class)
	}
}

// Results renders a batch of file analyses: a summary table followed by the
// analysis text and warnings of each file.
type Results struct {
	Files []analyzer.FileResult
}

// NewResults wraps results for rendering.
func NewResults(files []analyzer.FileResult) *Results {
	return &Results{Files: files}
}

var resultHeaders = []string{"File", "Time", "Space", "Confidence", "Loops", "Recursive", "Depth"}

func (r *Results) RenderData() any {
	if len(r.Files) == 1 {
		return r.Files[0].Result
	}
	return r.Files
}

func (r *Results) rows(colored bool) [][]string {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		res := f.Result
		if res.Failed() {
			msg := "error"
			if colored {
				msg = color.RedString(msg)
			}
			rows = append(rows, []string{f.Path, msg, "-", "-", "-", "-", "-"})
			continue
		}
		timeC, spaceC := res.TimeComplexity, res.SpaceComplexity
		if colored {
			timeC, spaceC = ComplexityColor(timeC), ComplexityColor(spaceC)
		}
		rows = append(rows, []string{
			f.Path,
			timeC,
			spaceC,
			strconv.FormatFloat(res.Confidence, 'f', -1, 64) + "%",
			strconv.Itoa(res.ASTInfo.Loops),
			strconv.Itoa(res.ASTInfo.RecursiveCalls),
			strconv.Itoa(res.ASTInfo.NestedDepth),
		})
	}
	return rows
}

// footer summarizes batches of more than one file.
func (r *Results) footer() []string {
	if len(r.Files) < 2 {
		return nil
	}
	results := make([]*models.AnalysisResult, len(r.Files))
	for i, f := range r.Files {
		results[i] = f.Result
	}
	sum := stats.Summarize(results)
	worst := sum.WorstTime
	if worst == "" {
		worst = "-"
	}
	return []string{
		fmt.Sprintf("%d files (%d failed)", sum.Files, sum.Failed),
		"worst " + worst,
		"",
		"median " + strconv.FormatFloat(sum.MedianConfidence, 'f', -1, 64) + "%",
		"", "", "",
	}
}

func (r *Results) details() []Section {
	sections := make([]Section, 0, len(r.Files))
	for _, f := range r.Files {
		res := f.Result
		s := Section{Title: f.Path}
		if res.Failed() {
			s.Content = "Error: " + res.Error
			sections = append(sections, s)
			continue
		}
		var b strings.Builder
		b.WriteString(res.Analysis)
		if len(res.ASTInfo.Functions) > 0 {
			fmt.Fprintf(&b, "\nFunctions: %s", strings.Join(res.ASTInfo.Functions, ", "))
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "\nWarning: %s", w)
		}
		s.Content = b.String()
		sections = append(sections, s)
	}
	return sections
}

func (r *Results) RenderText(w io.Writer, colored bool) error {
	table := NewTable("Complexity Estimates", resultHeaders, r.rows(colored), r.footer(), nil)
	if err := table.RenderText(w, colored); err != nil {
		return err
	}
	for _, s := range r.details() {
		if err := s.RenderText(w, colored); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (r *Results) RenderMarkdown(w io.Writer) error {
	report := &Report{Title: "Complexity Estimates"}
	report.Sections = append(report.Sections, NewTable("", resultHeaders, r.rows(false), r.footer(), nil))
	for _, s := range r.details() {
		report.Sections = append(report.Sections, &s)
	}
	return report.RenderMarkdown(w)
}
