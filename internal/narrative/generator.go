// Package narrative turns computed scores into analyst prose via the
// Anthropic API. It is strictly best-effort: callers treat every error as
// "no narrative" and the numeric pipeline never waits on it beyond the
// configured timeout.
package narrative

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gtj-aero/trustscore-cli/internal/resilience"
	"github.com/gtj-aero/trustscore-cli/pkg/anthropic"
)

// analystSystemPrompt is shared across every request in a run, so it is
// sent with a cache breakpoint and warmed once by Prime.
const analystSystemPrompt = "You are an aviation safety analyst writing for charter brokers. " +
	"Ground every statement in the numbers you are given. Do not invent facts, " +
	"do not soften material risks, and do not pad."

// Config controls the narrative generator.
type Config struct {
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature       float64 `yaml:"temperature" mapstructure:"temperature"`
	RequestTimeoutSec int     `yaml:"request_timeout_sec" mapstructure:"request_timeout_sec"`

	// RequestsPerSecond throttles outbound API calls across a batch run.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`

	Retry   resilience.RetryConfig
	Breaker resilience.CircuitBreakerConfig
}

// DefaultConfig returns production narrative settings.
func DefaultConfig() Config {
	return Config{
		Model:             "claude-haiku-4-5-20251001",
		MaxTokens:         1024,
		Temperature:       0.2,
		RequestTimeoutSec: 60,
		RequestsPerSecond: 2,
		Retry:             resilience.DefaultRetryConfig(),
		Breaker:           resilience.DefaultCircuitBreakerConfig(),
	}
}

// Generator produces prose explanations for computed scores. Safe for
// concurrent use; the limiter and breaker are shared across goroutines so a
// batch run is throttled and fails fast as a whole.
type Generator struct {
	client  anthropic.Client
	cfg     Config
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
}

// NewGenerator creates a Generator over the given client.
func NewGenerator(client anthropic.Client, cfg Config) *Generator {
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = DefaultConfig().RequestTimeoutSec
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}

	cfg.Retry.OnRetry = resilience.RetryLogger("anthropic", "create_message")

	return &Generator{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		breaker: resilience.NewCircuitBreaker(cfg.Breaker),
	}
}

// Prime warms the prompt cache with the shared system prompt so the fan-out
// of a batch run reads it from cache. Failures are logged and ignored.
func (g *Generator) Prime(ctx context.Context) {
	_, err := anthropic.PrimerRequest(ctx, g.client, anthropic.MessageRequest{
		Model:     g.cfg.Model,
		MaxTokens: 16,
		System:    anthropic.BuildCachedSystemBlocks(analystSystemPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: "ok"}},
	})
	if err != nil {
		zap.L().Warn("narrative: cache primer failed", zap.Error(err))
	}
}

// Explain sends one prompt and returns the model's prose. It rate-limits,
// retries transient failures, and trips the shared circuit breaker after
// repeated hard failures so the rest of a batch run skips narration instead
// of queueing behind a dead endpoint.
func (g *Generator) Explain(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "narrative: rate limit wait")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.RequestTimeoutSec)*time.Second)
	defer cancel()

	temp := g.cfg.Temperature
	req := anthropic.MessageRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: &temp,
		System:      anthropic.BuildCachedSystemBlocks(analystSystemPrompt),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
	}

	resp, err := resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, g.cfg.Retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return g.client.CreateMessage(ctx, req)
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "narrative: explain")
	}

	resp.Usage.LogCost(g.cfg.Model, "narrative")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.New("narrative: empty response")
	}
	return text, nil
}
