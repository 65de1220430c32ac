package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panbanda/bigo/internal/cache"
	"github.com/panbanda/bigo/pkg/models"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ChatClient is the part of an OpenAI-compatible client the model strategy
// needs. *openai.Client satisfies it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Store persists model estimates between runs. *cache.Cache satisfies it.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte) error
}

// ErrEmptyReply is returned when the model answers with no choices.
var ErrEmptyReply = errors.New("model returned no choices")

// ModelAssisted asks a chat model for an estimate and reconciles it with the
// rule baseline. The baseline is returned unchanged whenever the model cannot
// be reached or answers with something that does not match the estimate schema.
type ModelAssisted struct {
	client      ChatClient
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	store       Store
	prompt      *Prompt
	logger      *slog.Logger
}

// ModelOption configures a ModelAssisted classifier.
type ModelOption func(*ModelAssisted)

// WithStore caches estimates keyed by model, prompt version and code.
func WithStore(s Store) ModelOption {
	return func(m *ModelAssisted) {
		m.store = s
	}
}

// WithRequestsPerMinute throttles model calls (0 = unlimited).
func WithRequestsPerMinute(rpm int) ModelOption {
	return func(m *ModelAssisted) {
		if rpm <= 0 {
			m.limiter = nil
			return
		}
		m.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ModelOption {
	return func(m *ModelAssisted) {
		m.temperature = float32(t)
	}
}

// WithRequestTimeout bounds a single model call (0 = caller's context only).
func WithRequestTimeout(d time.Duration) ModelOption {
	return func(m *ModelAssisted) {
		m.timeout = d
	}
}

// WithModelLogger sets the logger used for fallbacks.
func WithModelLogger(l *slog.Logger) ModelOption {
	return func(m *ModelAssisted) {
		m.logger = l
	}
}

// NewModelAssisted creates the model strategy on top of client.
func NewModelAssisted(client ChatClient, model string, opts ...ModelOption) (*ModelAssisted, error) {
	if client == nil {
		return nil, errors.New("model strategy requires a chat client")
	}
	if model == "" {
		return nil, errors.New("model strategy requires a model name")
	}

	prompt, err := LoadPrompt("estimate")
	if err != nil {
		return nil, err
	}

	m := &ModelAssisted{
		client: client,
		model:  model,
		prompt: prompt,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name identifies the strategy.
func (m *ModelAssisted) Name() string {
	return StrategyModel
}

// Classify returns the reconciled model estimate, or the rule baseline when
// the model fails.
func (m *ModelAssisted) Classify(ctx context.Context, in Input) (models.ComplexityEstimate, error) {
	if err := ctx.Err(); err != nil {
		return models.ComplexityEstimate{}, err
	}

	base := Baseline(in.Profile)

	est, err := m.estimate(ctx, in, base)
	if err != nil {
		m.logger.Warn("model estimate unavailable, using rule baseline",
			"model", m.model,
			"error", err)
		return base, nil
	}
	return reconcile(est, base), nil
}

func (m *ModelAssisted) estimate(ctx context.Context, in Input, base models.ComplexityEstimate) (models.ComplexityEstimate, error) {
	key := cache.Key(m.model, m.prompt.Version, in.Code)
	if m.store != nil {
		if data, ok := m.store.Get(key); ok {
			var est models.ComplexityEstimate
			if err := json.Unmarshal(data, &est); err == nil {
				return est, nil
			}
		}
	}

	user, err := m.prompt.Render(promptData{
		Code:     in.Code,
		Metrics:  in.Profile.Metrics,
		Baseline: base,
		Cycles:   in.Profile.Cycles,
	})
	if err != nil {
		return models.ComplexityEstimate{}, err
	}

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return models.ComplexityEstimate{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: m.prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: m.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return models.ComplexityEstimate{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.ComplexityEstimate{}, ErrEmptyReply
	}

	est, err := parseEstimate(resp.Choices[0].Message.Content)
	if err != nil {
		return models.ComplexityEstimate{}, err
	}

	if m.store != nil {
		if data, err := json.Marshal(est); err == nil {
			if err := m.store.Set(key, data); err != nil {
				m.logger.Debug("cache write failed", "error", err)
			}
		}
	}
	return est, nil
}

// reconcile merges a model estimate with the structural baseline. Agreement
// on the time class keeps the higher confidence; disagreement keeps the
// model's classes at the lower confidence and records the baseline.
func reconcile(model, base models.ComplexityEstimate) models.ComplexityEstimate {
	out := model

	mt, ok := ParseClass(model.TimeComplexity)
	if ok {
		out.TimeComplexity = mt.String()
	}
	if ms, ok := ParseClass(model.SpaceComplexity); ok {
		out.SpaceComplexity = ms.String()
	}

	bt, _ := ParseClass(base.TimeComplexity)
	if ok && mt.Compare(bt) == 0 {
		out.Confidence = max(model.Confidence, base.Confidence)
	} else {
		out.Confidence = min(model.Confidence, base.Confidence)
		out.Analysis = fmt.Sprintf("%s (structural baseline: time %s, space %s).",
			strings.TrimRight(strings.TrimSpace(model.Analysis), "."),
			base.TimeComplexity, base.SpaceComplexity)
	}
	out.ClampConfidence()
	return out
}
