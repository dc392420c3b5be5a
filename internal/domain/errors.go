package domain

import "errors"

var (
	// ErrEmptyMessage is returned when the assistant receives a blank message
	ErrEmptyMessage = errors.New("message is required")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidCatalog is returned when the product corpus violates a catalog invariant
	ErrInvalidCatalog = errors.New("invalid product catalog")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrArticleSourceFailure is returned when the knowledge articles cannot be loaded
	ErrArticleSourceFailure = errors.New("article source request failed")

	// ErrGenerationUnavailable is returned when no generation backend is configured
	ErrGenerationUnavailable = errors.New("text generation not configured")

	// ErrGenerationFailed is returned when every generation model failed
	ErrGenerationFailed = errors.New("all generation models failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
