package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agrihope/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// DefaultModels is the fallback order of free-tier models
var DefaultModels = []string{
	"meta-llama/llama-3.1-8b-instruct",
	"microsoft/phi-3-mini-128k-instruct",
	"google/gemma-2-9b-it",
	"meta-llama/llama-3-8b-instruct",
}

// Attempt outcomes reported to the observer
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeEmpty       = "empty"
	OutcomeCircuitOpen = "circuit_open"
)

// AttemptObserver receives one call per model attempt
type AttemptObserver interface {
	RecordGenerationAttempt(model, outcome string)
}

// ChainConfig holds the model order and breaker settings
type ChainConfig struct {
	Models                  []string
	AttemptTimeout          time.Duration
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func (c ChainConfig) normalize() ChainConfig {
	out := c
	if len(out.Models) == 0 {
		out.Models = DefaultModels
	}
	if out.AttemptTimeout <= 0 {
		out.AttemptTimeout = 20 * time.Second
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = 5
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = 0.6
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = 30 * time.Second
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = 1
	}
	return out
}

// ModelChain tries models in order until one returns usable text.
// Each model sits behind its own circuit breaker so a dead model is skipped
// without a network round trip.
type ModelChain struct {
	generator domain.TextGenerator
	cfg       ChainConfig
	logger    zerolog.Logger
	observer  AttemptObserver

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[string]
}

// NewModelChain creates a chain over a single-model generator
func NewModelChain(generator domain.TextGenerator, cfg ChainConfig, observer AttemptObserver, logger zerolog.Logger) *ModelChain {
	return &ModelChain{
		generator: generator,
		cfg:       cfg.normalize(),
		logger:    logger.With().Str("component", "model_chain").Logger(),
		observer:  observer,
		breakers:  make(map[string]*gobreaker.CircuitBreaker[string]),
	}
}

// Models returns the configured model order
func (c *ModelChain) Models() []string {
	out := make([]string, len(c.cfg.Models))
	copy(out, c.cfg.Models)
	return out
}

// Generate returns the first usable completion and the model that produced it
func (c *ModelChain) Generate(ctx context.Context, systemPrompt, userMessage string) (string, string, error) {
	var lastErr error

	for _, model := range c.cfg.Models {
		if err := ctx.Err(); err != nil {
			return "", "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
		}

		text, err := c.attempt(ctx, model, systemPrompt, userMessage)
		if err == nil {
			c.observe(model, OutcomeSuccess)
			c.logger.Info().Str("model", model).Msg("generation succeeded")
			return text, model, nil
		}

		// no credentials means every model will fail the same way
		if errors.Is(err, domain.ErrGenerationUnavailable) {
			return "", "", err
		}

		c.observe(model, outcomeOf(err))
		c.logger.Warn().Err(err).Str("model", model).Msg("generation attempt failed")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no models configured")
	}
	return "", "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, lastErr)
}

// attempt runs one model call through that model's breaker
func (c *ModelChain) attempt(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	breaker := c.circuitBreaker(model)

	return breaker.Execute(func() (string, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()

		text, err := c.generator.Generate(attemptCtx, model, systemPrompt, userMessage)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", errEmptyCompletion
		}
		return text, nil
	})
}

func (c *ModelChain) circuitBreaker(model string) *gobreaker.CircuitBreaker[string] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if breaker, ok := c.breakers[model]; ok {
		return breaker
	}

	settings := gobreaker.Settings{
		Name:        model,
		MaxRequests: c.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     c.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < c.cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= c.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation and missing credentials say nothing about the model
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, domain.ErrGenerationUnavailable)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn().Str("model", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}

	breaker := gobreaker.NewCircuitBreaker[string](settings)
	c.breakers[model] = breaker
	return breaker
}

func (c *ModelChain) observe(model, outcome string) {
	if c.observer != nil {
		c.observer.RecordGenerationAttempt(model, outcome)
	}
}

func outcomeOf(err error) string {
	switch {
	case IsCircuitOpen(err):
		return OutcomeCircuitOpen
	case errors.Is(err, errEmptyCompletion):
		return OutcomeEmpty
	default:
		return OutcomeError
	}
}

// IsCircuitOpen reports whether err came from a tripped breaker
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
