package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panbanda/bigo/internal/logging"
	"github.com/panbanda/bigo/pkg/analyzer"
	"github.com/panbanda/bigo/pkg/analyzer/classify"
	"github.com/panbanda/bigo/pkg/config"
	"github.com/panbanda/bigo/pkg/models"
	"github.com/panbanda/bigo/pkg/samples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, mutate func(*config.ServerConfig), opts ...analyzer.Option) *Server {
	t.Helper()
	cfg := config.DefaultConfig().Server
	if mutate != nil {
		mutate(&cfg)
	}
	opts = append(opts, analyzer.WithLogger(logging.Discard()))
	return New(analyzer.New(opts...), cfg, logging.Discard())
}

func post(s *Server, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)
	return w
}

func codeBody(t *testing.T, code string) string {
	t.Helper()
	b, err := json.Marshal(models.AnalysisRequest{Code: code})
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Time Complexity Estimator API is running", body["message"])
	assert.Equal(t, classify.StrategyRule, body["strategy"])
}

func TestAnalyzeSuccess(t *testing.T) {
	s := newTestServer(t, nil)
	sample, ok := samples.Get("binary_search")
	require.True(t, ok)

	w := post(s, codeBody(t, sample.Code))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "O(log n)", body["time_complexity"])
	assert.Equal(t, "O(1)", body["space_complexity"])
	assert.EqualValues(t, 85, body["confidence"])
	assert.NotEmpty(t, body["analysis"])
	assert.NotContains(t, body, "error")

	info := body["ast_info"].(map[string]any)
	assert.EqualValues(t, 1, info["loops"])
	assert.EqualValues(t, 0, info["recursive_calls"])
	assert.Equal(t, []any{"binary_search"}, info["functions"])
}

func TestAnalyzeSemanticFailure(t *testing.T) {
	s := newTestServer(t, nil)

	w := post(s, codeBody(t, "def f(:\n    pass\n"))
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 1)
	assert.Contains(t, body["error"], "syntax error at line 1")
}

func TestAnalyzeResourceLimit(t *testing.T) {
	s := newTestServer(t, nil, analyzer.WithLimits(analyzer.Limits{MaxCodeBytes: 8}))

	w := post(s, codeBody(t, "total = sum(range(100))"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "resource limit exceeded")
}

func TestAnalyzeBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"code": `, "invalid JSON body"},
		{"empty body", ``, "invalid JSON body"},
		{"missing code", `{}`, "No code provided"},
		{"blank code", `{"code": "  \n\t"}`, "No code provided"},
		{"wrong type", `{"code": 42}`, "invalid JSON body"},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(s, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.want)
		})
	}
}

func TestAnalyzeBodyTooLarge(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 64 })
	body := codeBody(t, strings.Repeat("x = 1\n", 50))

	w := post(s, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// Without a Content-Length the limit trips while decoding.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze", struct{ *strings.Reader }{strings.NewReader(body)})
	req.ContentLength = -1
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

type brokenClassifier struct{}

func (brokenClassifier) Name() string { return "broken" }

func (brokenClassifier) Classify(context.Context, classify.Input) (models.ComplexityEstimate, error) {
	return models.ComplexityEstimate{}, errors.New("backend down")
}

func TestAnalyzeInternalError(t *testing.T) {
	s := newTestServer(t, nil, analyzer.WithClassifier(brokenClassifier{}))

	w := post(s, codeBody(t, "x = 1"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error: classify: backend down")
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		s := newTestServer(t, nil)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("allow list", func(t *testing.T) {
		s := newTestServer(t, func(c *config.ServerConfig) {
			c.CORSOrigins = []string{"https://app.example.com"}
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.example.com")
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		s.Handler().ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	post(s, codeBody(t, "x = 1"))
	post(s, codeBody(t, "def f(:"))
	post(s, `{}`)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	out := w.Body.String()
	assert.Contains(t, out, `bigo_analyze_requests_total{outcome="ok"} 1`)
	assert.Contains(t, out, `bigo_analyze_requests_total{outcome="parse_error"} 1`)
	assert.Contains(t, out, `bigo_analyze_requests_total{outcome="empty_code"} 1`)
	assert.Contains(t, out, `bigo_estimates_total{time_complexity="O(1)"} 1`)
	assert.Contains(t, out, "bigo_analyze_duration_seconds_count 2")
}

// fixedClassifier returns a canned time class, as a model backend might.
type fixedClassifier string

func (fixedClassifier) Name() string { return "fixed" }

func (f fixedClassifier) Classify(context.Context, classify.Input) (models.ComplexityEstimate, error) {
	return models.ComplexityEstimate{TimeComplexity: string(f), SpaceComplexity: "O(1)", Confidence: 50}, nil
}

func TestMetricsTimeClassLabel(t *testing.T) {
	tests := []struct {
		class string
		label string
	}{
		{"o(N)", "O(n)"},
		{"O(n log n)", "O(n log n)"},
		{"linear in the input, probably", otherClass},
		{"O(n!)", otherClass},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			s := newTestServer(t, nil, analyzer.WithClassifier(fixedClassifier(tt.class)))
			require.Equal(t, http.StatusOK, post(s, codeBody(t, "x = 1")).Code)

			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			assert.Contains(t, w.Body.String(), `bigo_estimates_total{time_complexity="`+tt.label+`"} 1`)
			assert.Equal(t, 1, strings.Count(w.Body.String(), "bigo_estimates_total{"))
		})
	}
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) { c.Metrics = false })
	post(s, codeBody(t, "x = 1"))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeShutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/analyze", "application/json",
		bytes.NewBufferString(codeBody(t, "for i in range(n):\n    print(i)\n")))
	require.NoError(t, err)
	var res models.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	resp.Body.Close()
	assert.Equal(t, "O(n)", res.TimeComplexity)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
