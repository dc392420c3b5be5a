package articles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrihope/backend/internal/domain"
	"github.com/agrihope/backend/internal/infrastructure/cache"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	articles []domain.Article
	err      error
	calls    int
}

func (s *countingSource) FetchAll(ctx context.Context) ([]domain.Article, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.articles, nil
}

// brokenCache fails every operation
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, domain.ErrCacheUnavailable
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return domain.ErrCacheUnavailable
}
func (brokenCache) Delete(context.Context, string) error { return domain.ErrCacheUnavailable }
func (brokenCache) Exists(context.Context, string) (bool, error) {
	return false, domain.ErrCacheUnavailable
}

func TestCachedSource_ReadThrough(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	inner := &countingSource{articles: []domain.Article{{ID: "a1", Title: "Mulching"}}}
	source := NewCachedSource(inner, mem, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := source.FetchAll(ctx)
	require.NoError(t, err)
	second, err := source.FetchAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	require.NoError(t, source.Invalidate(ctx))
	_, err = source.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_SourceErrorPropagates(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	inner := &countingSource{err: domain.ErrArticleSourceFailure}
	source := NewCachedSource(inner, mem, time.Minute, zerolog.Nop())

	_, err := source.FetchAll(context.Background())
	assert.True(t, errors.Is(err, domain.ErrArticleSourceFailure))
	assert.Equal(t, 0, mem.Size())
}

func TestCachedSource_BrokenCacheDegrades(t *testing.T) {
	inner := &countingSource{articles: []domain.Article{{ID: "a1"}}}
	source := NewCachedSource(inner, brokenCache{}, time.Minute, zerolog.Nop())

	got, err := source.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCachedSource_UndecodableEntryRefetches(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, articlesCacheKey, []byte("{garbage"), time.Minute))

	inner := &countingSource{articles: []domain.Article{{ID: "a1"}}}
	source := NewCachedSource(inner, mem, time.Minute, zerolog.Nop())

	got, err := source.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestStaticSource(t *testing.T) {
	got, err := NewStaticSource().FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Essential Agricultural Tools for Women Farmers", got[0].Title)
	assert.Equal(t, 150.0, got[0].Price)
	assert.Equal(t, 15.0, got[0].Discount)
	assert.Contains(t, got[0].Content, "Lightweight Hand Hoes")
}

func TestCachedSource_CachedTracksFetchAndInvalidate(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	ctx := context.Background()

	source := NewCachedSource(&countingSource{articles: []domain.Article{{ID: "a1"}}}, mem, time.Minute, zerolog.Nop())

	cached, err := source.Cached(ctx)
	require.NoError(t, err)
	assert.False(t, cached)

	_, err = source.FetchAll(ctx)
	require.NoError(t, err)
	cached, err = source.Cached(ctx)
	require.NoError(t, err)
	assert.True(t, cached)

	require.NoError(t, source.Invalidate(ctx))
	cached, err = source.Cached(ctx)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestCachedSource_CachedReportsBrokenCache(t *testing.T) {
	source := NewCachedSource(&countingSource{}, brokenCache{}, time.Minute, zerolog.Nop())

	_, err := source.Cached(context.Background())
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}
