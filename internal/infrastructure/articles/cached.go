package articles

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/agrihope/backend/internal/domain"
	"github.com/rs/zerolog"
)

const articlesCacheKey = "articles:all"

// CachedSource serves articles from cache and refreshes from the wrapped
// source on a miss. Cache failures never fail a fetch.
type CachedSource struct {
	source domain.ArticleSource
	cache  domain.CacheRepository
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedSource wraps source with a read-through cache
func NewCachedSource(source domain.ArticleSource, cache domain.CacheRepository, ttl time.Duration, logger zerolog.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedSource{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "article_cache").Logger(),
	}
}

// FetchAll returns cached articles, loading and storing them on a miss
func (s *CachedSource) FetchAll(ctx context.Context) ([]domain.Article, error) {
	if cached, err := s.cache.Get(ctx, articlesCacheKey); err == nil {
		var articles []domain.Article
		if err := json.Unmarshal(cached, &articles); err == nil {
			s.logger.Debug().Int("count", len(articles)).Msg("articles served from cache")
			return articles, nil
		}
		s.logger.Warn().Msg("discarding undecodable cached articles")
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		s.logger.Warn().Err(err).Msg("article cache read failed")
	}

	articles, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(articles); err == nil {
		if err := s.cache.Set(ctx, articlesCacheKey, data, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("article cache write failed")
		}
	}

	return articles, nil
}

// Cached reports whether an article set is currently cached
func (s *CachedSource) Cached(ctx context.Context) (bool, error) {
	return s.cache.Exists(ctx, articlesCacheKey)
}

// Invalidate drops the cached article set
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, articlesCacheKey)
}
