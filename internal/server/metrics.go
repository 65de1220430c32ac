package server

import (
	"github.com/panbanda/bigo/pkg/analyzer/classify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "bigo"

// Outcome labels beyond the analyzer's error kinds.
const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeTooLarge   = "too_large"
)

// otherClass labels estimates whose time class is not a recognized notation.
const otherClass = "other"

// timeClassLabel keeps the time_complexity label set bounded: classifier
// output is normalized, and anything unparseable shares one label.
func timeClassLabel(s string) string {
	if c, ok := classify.ParseClass(s); ok {
		return c.String()
	}
	return otherClass
}

// Metrics holds the Prometheus collectors for the analyze endpoint.
type Metrics struct {
	// Requests counts analyze requests by outcome.
	Requests *prometheus.CounterVec
	// Duration measures analyze latency in seconds.
	Duration prometheus.Histogram
	// InFlight tracks analyses currently running.
	InFlight prometheus.Gauge
	// Estimates counts successful estimates by time class.
	Estimates *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "analyze_requests_total",
			Help:      "Analyze requests by outcome.",
		}, []string{"outcome"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "analyze_duration_seconds",
			Help:      "Time spent analyzing a snippet.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "analyze_in_flight",
			Help:      "Analyses currently running.",
		}),
		Estimates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "estimates_total",
			Help:      "Successful estimates by time complexity class.",
		}, []string{"time_complexity"}),
	}
}
