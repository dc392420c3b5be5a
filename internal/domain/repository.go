package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ArticleSource provides the knowledge articles used to ground answers
type ArticleSource interface {
	FetchAll(ctx context.Context) ([]Article, error)
}

// TextGenerator calls a single text generation model
type TextGenerator interface {
	Generate(ctx context.Context, model, systemPrompt, userMessage string) (string, error)
}

// AnswerGenerator produces an answer from an ordered set of models and
// reports which model answered
type AnswerGenerator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (text string, model string, err error)
}
