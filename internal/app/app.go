// Package app wires configuration into a ready assistant pipeline.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrihope/backend/config"
	"github.com/agrihope/backend/internal/catalog"
	"github.com/agrihope/backend/internal/domain"
	"github.com/agrihope/backend/internal/infrastructure/articles"
	"github.com/agrihope/backend/internal/infrastructure/cache"
	"github.com/agrihope/backend/internal/infrastructure/openrouter"
	"github.com/agrihope/backend/internal/observability/metrics"
	"github.com/agrihope/backend/internal/usecase"
	"github.com/rs/zerolog"
)

// ServiceName labels logs and metrics
const ServiceName = "agrihope-backend"

// App holds the long-lived components built from configuration
type App struct {
	Catalog   *catalog.Catalog
	Assistant *usecase.AssistantService
	Metrics   *metrics.AssistantMetrics

	articleCache *articles.CachedSource // nil for the static source
	closers      []func() error
}

// New builds every component. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{}

	c, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a.Catalog = c
	a.Metrics = metrics.New(ServiceName)

	store, err := a.buildCache(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	source, err := a.buildArticles(ctx, cfg, store, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	temperature := cfg.Generation.Temperature
	client := openrouter.NewClient(openrouter.Config{
		APIKey:            cfg.Generation.APIKey,
		BaseURL:           cfg.Generation.BaseURL,
		Referer:           cfg.Generation.Referer,
		Title:             cfg.Generation.Title,
		Timeout:           cfg.Generation.Timeout,
		RequestsPerSecond: cfg.Generation.RequestsPerSecond,
		Burst:             cfg.Generation.Burst,
		MaxTokens:         cfg.Generation.MaxTokens,
		Temperature:       &temperature,
		TopP:              cfg.Generation.TopP,
	}, logger)
	if !client.Configured() {
		logger.Warn().Msg("generation API key not set, answers will use canned fallbacks")
	}

	chain := openrouter.NewModelChain(client, openrouter.ChainConfig{
		Models:              cfg.Generation.Models,
		AttemptTimeout:      cfg.Generation.AttemptTimeout,
		BreakerMinRequests:  cfg.Generation.BreakerMinRequests,
		BreakerFailureRatio: cfg.Generation.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.Generation.BreakerOpenTimeout,
	}, a.Metrics, logger)

	a.Assistant = usecase.NewAssistantService(usecase.AssistantDeps{
		Classifier:     usecase.NewQueryClassifier(c.CropNames(), logger),
		Matcher:        usecase.NewProductMatcher(c, usecase.MatchConfig{CropTierLimit: cfg.Matching.CropTierLimit, ResultLimit: cfg.Matching.ResultLimit}, logger),
		Articles:       source,
		StaticArticles: articles.NewStaticSource(),
		Generator:      chain,
		Metrics:        a.Metrics,
		Logger:         logger,
	}, usecase.AssistantServiceConfig{
		ProductConfidenceThreshold: cfg.Matching.ConfidenceThreshold,
		MaxResponseProducts:        cfg.Matching.MaxResponseProducts,
	})

	logger.Info().
		Int("products", c.Len()).
		Str("articles", cfg.Articles.Source).
		Str("cache", cfg.Cache.Type).
		Strs("models", chain.Models()).
		Msg("assistant pipeline ready")

	return a, nil
}

func (a *App) buildCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (domain.CacheRepository, error) {
	switch cfg.Cache.Type {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL, Prefix: cfg.Cache.Prefix})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		logger.Info().Msg("using redis cache")
		return rc, nil
	default:
		mc := cache.NewMemoryCache()
		a.closers = append(a.closers, mc.Close)
		return mc, nil
	}
}

func (a *App) buildArticles(ctx context.Context, cfg *config.Config, store domain.CacheRepository, logger zerolog.Logger) (domain.ArticleSource, error) {
	if cfg.Articles.Source != "postgres" {
		return articles.NewStaticSource(), nil
	}

	db, err := articles.OpenDB(ctx, cfg.Articles.DSN)
	if err != nil {
		return nil, fmt.Errorf("open articles database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	pg := articles.NewPostgresSource(db, cfg.Articles.Limit)
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	a.articleCache = articles.NewCachedSource(pg, store, cfg.Articles.CacheTTL, logger)
	return a.articleCache, nil
}

// RefreshArticles drops the cached article set so the next query reads the
// database. It reports whether a cached set was present.
func (a *App) RefreshArticles(ctx context.Context) (bool, error) {
	if a.articleCache == nil {
		return false, nil
	}

	cached, err := a.articleCache.Cached(ctx)
	if err != nil {
		return false, err
	}
	if !cached {
		return false, nil
	}
	return true, a.articleCache.Invalidate(ctx)
}

// Close releases connections in reverse order of creation
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
