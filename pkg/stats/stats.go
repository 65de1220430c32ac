// Package stats summarizes batches of complexity estimates.
package stats

import (
	"sort"

	"github.com/panbanda/bigo/pkg/analyzer/classify"
	"github.com/panbanda/bigo/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the estimates of a batch.
type Summary struct {
	Files            int            `json:"files" toon:"files"`
	Failed           int            `json:"failed" toon:"failed"`
	MeanConfidence   float64        `json:"mean_confidence" toon:"mean_confidence"`
	MedianConfidence float64        `json:"median_confidence" toon:"median_confidence"`
	MinConfidence    float64        `json:"min_confidence" toon:"min_confidence"`
	WorstTime        string         `json:"worst_time_complexity,omitempty" toon:"worst_time_complexity,omitempty"`
	ByTime           map[string]int `json:"by_time_complexity" toon:"by_time_complexity"`
}

// Summarize computes a Summary. Failed results count toward Files and Failed
// only. Unparseable complexity labels are counted but never chosen as worst.
func Summarize(results []*models.AnalysisResult) Summary {
	s := Summary{Files: len(results), ByTime: make(map[string]int)}

	var confidences []float64
	var worst classify.Class
	haveWorst := false
	for _, r := range results {
		if r == nil || r.Failed() {
			s.Failed++
			continue
		}
		confidences = append(confidences, r.Confidence)
		s.ByTime[r.TimeComplexity]++

		c, ok := classify.ParseClass(r.TimeComplexity)
		if !ok {
			continue
		}
		if !haveWorst || c.Compare(worst) > 0 {
			worst, haveWorst = c, true
			s.WorstTime = r.TimeComplexity
		}
	}

	if len(confidences) == 0 {
		return s
	}
	sort.Float64s(confidences)
	s.MeanConfidence = stat.Mean(confidences, nil)
	s.MedianConfidence = stat.Quantile(0.5, stat.Empirical, confidences, nil)
	s.MinConfidence = confidences[0]
	return s
}
