package classify

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/panbanda/bigo/pkg/config"
	"github.com/sashabaranov/go-openai"
)

// FromConfig builds the classifier named by cfg.Strategy. The model strategy
// degrades to the rule table when its API key is not set.
func FromConfig(cfg config.ClassifierConfig, store Store, logger *slog.Logger) (Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Strategy {
	case "", StrategyRule:
		return NewRuleBased(), nil
	case StrategyModel:
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			logger.Warn("model strategy configured without an API key, using rule table",
				"env", cfg.APIKeyEnv)
			return NewRuleBased(), nil
		}

		oc := openai.DefaultConfig(key)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}

		opts := []ModelOption{
			WithTemperature(cfg.Temperature),
			WithRequestsPerMinute(cfg.RequestsPerMinute),
			WithRequestTimeout(time.Duration(cfg.Timeout) * time.Second),
			WithModelLogger(logger),
		}
		if store != nil {
			opts = append(opts, WithStore(store))
		}
		return NewModelAssisted(openai.NewClientWithConfig(oc), cfg.Model, opts...)
	default:
		return nil, fmt.Errorf("unknown classifier strategy %q", cfg.Strategy)
	}
}
