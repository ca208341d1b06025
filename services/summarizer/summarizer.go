package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Summarizer turns a job description into a short summary
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Config selects and configures a Summarizer
type Config struct {
	Kind    string // "extractive" or "llm"
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// New builds the Summarizer named by cfg.Kind
func New(cfg Config) (Summarizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "extractive":
		return NewExtractive(3, 600), nil
	case "llm":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm summarizer requires an API key")
		}
		return NewLLM(cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown summarizer %q", cfg.Kind)
	}
}

// Func adapts a plain function to the Summarizer interface
type Func func(ctx context.Context, text string) (string, error)

func (f Func) Summarize(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
