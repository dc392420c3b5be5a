package openrouter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agrihope/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator answers per model from a fixed table
type scriptedGenerator struct {
	mu      sync.Mutex
	answers map[string]string
	errs    map[string]error
	calls   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, model)
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := g.errs[model]; ok {
		return "", err
	}
	return g.answers[model], nil
}

func (g *scriptedGenerator) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) RecordGenerationAttempt(model, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, model+"="+outcome)
}

func TestModelChain_FirstUsableAnswerWins(t *testing.T) {
	gen := &scriptedGenerator{
		answers: map[string]string{"b": "answer from b", "c": "answer from c"},
		errs:    map[string]error{"a": errors.New("boom")},
	}
	obs := &recordingObserver{}
	chain := NewModelChain(gen, ChainConfig{Models: []string{"a", "b", "c"}}, obs, zerolog.Nop())

	text, model, err := chain.Generate(context.Background(), "sys", "user")

	require.NoError(t, err)
	assert.Equal(t, "answer from b", text)
	assert.Equal(t, "b", model)
	assert.Equal(t, []string{"a", "b"}, gen.Calls())
	assert.Equal(t, []string{"a=error", "b=success"}, obs.outcomes)
}

func TestModelChain_EmptyContentAdvances(t *testing.T) {
	gen := &scriptedGenerator{answers: map[string]string{"a": "   ", "b": "real"}}
	obs := &recordingObserver{}
	chain := NewModelChain(gen, ChainConfig{Models: []string{"a", "b"}}, obs, zerolog.Nop())

	text, model, err := chain.Generate(context.Background(), "sys", "user")

	require.NoError(t, err)
	assert.Equal(t, "real", text)
	assert.Equal(t, "b", model)
	assert.Equal(t, []string{"a=empty", "b=success"}, obs.outcomes)
}

func TestModelChain_AllFail(t *testing.T) {
	gen := &scriptedGenerator{errs: map[string]error{
		"a": errors.New("a down"),
		"b": errors.New("b down"),
	}}
	chain := NewModelChain(gen, ChainConfig{Models: []string{"a", "b"}}, nil, zerolog.Nop())

	_, _, err := chain.Generate(context.Background(), "sys", "user")

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "b down")
	assert.Equal(t, []string{"a", "b"}, gen.Calls())
}

func TestModelChain_UnavailableStopsImmediately(t *testing.T) {
	gen := &scriptedGenerator{errs: map[string]error{
		"a": domain.ErrGenerationUnavailable,
	}}
	chain := NewModelChain(gen, ChainConfig{Models: []string{"a", "b"}}, nil, zerolog.Nop())

	_, _, err := chain.Generate(context.Background(), "sys", "user")

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.Equal(t, []string{"a"}, gen.Calls())
}

func TestModelChain_CancelledContextStopsChain(t *testing.T) {
	gen := &scriptedGenerator{answers: map[string]string{"a": "never"}}
	chain := NewModelChain(gen, ChainConfig{Models: []string{"a", "b"}}, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := chain.Generate(ctx, "sys", "user")

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Empty(t, gen.Calls())
}

func TestModelChain_BreakerSkipsDeadModel(t *testing.T) {
	gen := &scriptedGenerator{
		answers: map[string]string{"b": "ok"},
		errs:    map[string]error{"a": errors.New("a down")},
	}
	obs := &recordingObserver{}
	chain := NewModelChain(gen, ChainConfig{
		Models:              []string{"a", "b"},
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
	}, obs, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, model, err := chain.Generate(context.Background(), "sys", "user")
		require.NoError(t, err)
		assert.Equal(t, "b", model)
	}

	// two real calls trip the breaker; the third is rejected without calling a
	calls := 0
	for _, m := range gen.Calls() {
		if m == "a" {
			calls++
		}
	}
	assert.Equal(t, 2, calls)
	assert.Contains(t, obs.outcomes, "a="+OutcomeCircuitOpen)
}

func TestModelChain_DefaultModels(t *testing.T) {
	chain := NewModelChain(&scriptedGenerator{}, ChainConfig{}, nil, zerolog.Nop())

	assert.Equal(t, DefaultModels, chain.Models())
	assert.Equal(t, "meta-llama/llama-3.1-8b-instruct", chain.Models()[0])
}
