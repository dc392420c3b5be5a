package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agrihope/backend/internal/catalog"
	"github.com/agrihope/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArticles struct {
	articles []domain.Article
	err      error
	calls    int
}

func (f *fakeArticles) FetchAll(ctx context.Context) ([]domain.Article, error) {
	f.calls++
	return f.articles, f.err
}

type fakeGenerator struct {
	text   string
	model  string
	err    error
	prompt string
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userMessage string) (string, string, error) {
	f.calls++
	f.prompt = systemPrompt
	return f.text, f.model, f.err
}

type spyMatcher struct {
	inner ProductFinder
	terms []string
}

func (s *spyMatcher) MatchWithTier(searchTerms string) ([]domain.Product, MatchTier) {
	s.terms = append(s.terms, searchTerms)
	return s.inner.MatchWithTier(searchTerms)
}

type stubMatcher struct {
	products []domain.Product
}

func (s stubMatcher) MatchWithTier(string) ([]domain.Product, MatchTier) {
	return s.products, TierKeyword
}

type spyRecorder struct {
	mu               sync.Mutex
	classifications  []domain.QueryType
	tiers            []MatchTier
	answers          []string
	articleFallbacks int
}

func (r *spyRecorder) RecordClassification(q domain.QueryType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classifications = append(r.classifications, q)
}

func (r *spyRecorder) RecordMatch(tier MatchTier, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers = append(r.tiers, tier)
}

func (r *spyRecorder) RecordAnswer(model string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, model)
}

func (r *spyRecorder) RecordArticleFallback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articleFallbacks++
}

var staticArticle = domain.Article{ID: "static", Title: "Static", Content: "Static content"}

type fixture struct {
	service  *AssistantService
	articles *fakeArticles
	static   *fakeArticles
	matcher  *spyMatcher
	gen      *fakeGenerator
	metrics  *spyRecorder
}

func newFixture(t *testing.T, gen *fakeGenerator, config AssistantServiceConfig) *fixture {
	t.Helper()

	c := catalog.MustDefault()
	f := &fixture{
		articles: &fakeArticles{articles: []domain.Article{
			{ID: "1", Title: "Potato Guide", Content: "Hill your potatoes"},
			{ID: "2", Title: "Tomato Guide", Content: "Stake your tomatoes"},
		}},
		static:  &fakeArticles{articles: []domain.Article{staticArticle}},
		matcher: &spyMatcher{inner: NewProductMatcher(c, MatchConfig{}, zerolog.Nop())},
		gen:     gen,
		metrics: &spyRecorder{},
	}

	deps := AssistantDeps{
		Classifier:     NewQueryClassifier(c.CropNames(), zerolog.Nop()),
		Matcher:        f.matcher,
		Articles:       f.articles,
		StaticArticles: f.static,
		Metrics:        f.metrics,
		Logger:         zerolog.Nop(),
	}
	if gen != nil {
		deps.Generator = gen
	}
	f.service = NewAssistantService(deps, config)
	return f
}

func TestHandleQuery_EmptyMessage(t *testing.T) {
	f := newFixture(t, nil, AssistantServiceConfig{})

	for _, req := range []*domain.AssistantRequest{nil, {Message: ""}, {Message: "   \n\t"}} {
		_, err := f.service.HandleQuery(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	}
	assert.Empty(t, f.metrics.classifications)
}

func TestHandleQuery_ProductQueryUsesGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "Try the planting shovel.", model: "meta-llama/llama-3.1-8b-instruct"}
	f := newFixture(t, gen, AssistantServiceConfig{})

	resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
		Message: "I need tools for growing potatoes",
	})
	require.NoError(t, err)

	assert.Equal(t, "Try the planting shovel.", resp.Response)
	assert.Equal(t, "meta-llama/llama-3.1-8b-instruct", resp.ModelUsed)
	assert.Equal(t, domain.QueryTypeProduct, resp.QueryType)
	assert.InDelta(t, 0.7, resp.Confidence, 1e-9)
	assert.True(t, resp.HasProducts)
	assert.Equal(t, []string{"2", "18", "21"}, productIDs(resp.Products))
	assert.Equal(t, 2, resp.ArticlesUsed)
	assert.False(t, resp.TestMode)

	assert.Equal(t, []string{"potato"}, f.matcher.terms)
	assert.Contains(t, gen.prompt, "PRODUCT MODE ACTIVATED")
	assert.Contains(t, gen.prompt, "Potato Planting Shovel")
	assert.Contains(t, gen.prompt, "Title: Potato Guide")

	assert.Equal(t, []domain.QueryType{domain.QueryTypeProduct}, f.metrics.classifications)
	assert.Equal(t, []MatchTier{TierCrop}, f.metrics.tiers)
	assert.Equal(t, []string{"meta-llama/llama-3.1-8b-instruct"}, f.metrics.answers)
}

func TestHandleQuery_AdviceQuerySkipsMatching(t *testing.T) {
	gen := &fakeGenerator{text: "Water deeply.", model: "google/gemma-2-9b-it"}
	f := newFixture(t, gen, AssistantServiceConfig{})

	resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
		Message: "How do I grow tomatoes?",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QueryTypeAdvice, resp.QueryType)
	assert.False(t, resp.HasProducts)
	assert.NotNil(t, resp.Products)
	assert.Empty(t, resp.Products)
	assert.Empty(t, f.matcher.terms)
	assert.Contains(t, gen.prompt, "ADVICE MODE ACTIVATED")
	assert.NotContains(t, gen.prompt, "AVAILABLE PRODUCTS IN MARKETPLACE")
}

func TestHandleQuery_LowConfidenceProductSkipsMatching(t *testing.T) {
	f := newFixture(t, nil, AssistantServiceConfig{})

	// one product keyword scores 0.5, below the 0.6 threshold
	resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
		Message: "where can I buy potatoes",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QueryTypeProduct, resp.QueryType)
	assert.False(t, resp.HasProducts)
	assert.Empty(t, f.matcher.terms)
}

func TestHandleQuery_ThresholdIsConfigurable(t *testing.T) {
	f := newFixture(t, nil, AssistantServiceConfig{ProductConfidenceThreshold: 0.4})

	resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
		Message: "where can I buy potatoes",
	})
	require.NoError(t, err)

	assert.True(t, resp.HasProducts)
	assert.Equal(t, []string{"potato"}, f.matcher.terms)
}

func TestHandleQuery_OffTopicRedirects(t *testing.T) {
	gen := &fakeGenerator{text: "It is noon.", model: "m"}
	f := newFixture(t, gen, AssistantServiceConfig{})

	resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
		Message: "what time is it",
	})
	require.NoError(t, err)

	assert.Equal(t, RedirectResponse, resp.Response)
	assert.Empty(t, resp.ModelUsed)
	assert.Zero(t, resp.ArticlesUsed)
	assert.NotNil(t, resp.Products)
	assert.Zero(t, gen.calls)
	assert.Zero(t, f.articles.calls)
	assert.Empty(t, f.matcher.terms)
}

func TestHandleQuery_CropWithoutFarmingKeywordIsRedirected(t *testing.T) {
	gen := &fakeGenerator{text: "Olives are on aisle 3.", model: "m"}
	f := newFixture(t, gen, AssistantServiceConfig{})

	resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
		Message: "where can I buy olives",
	})
	require.NoError(t, err)

	assert.Equal(t, RedirectResponse, resp.Response)
	assert.Equal(t, domain.QueryTypeProduct, resp.QueryType)
	assert.Empty(t, resp.Products)
	assert.Zero(t, gen.calls)
	assert.Empty(t, f.matcher.terms)
}

func TestHandleQuery_GeneratorFailureFallsBack(t *testing.T) {
	testCases := []struct {
		name string
		gen  *fakeGenerator
	}{
		{name: "error", gen: &fakeGenerator{err: domain.ErrGenerationFailed}},
		{name: "blank text", gen: &fakeGenerator{text: "  ", model: "m"}},
		{name: "no generator", gen: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.gen, AssistantServiceConfig{})

			resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
				Message: "How do I grow tomatoes?",
			})
			require.NoError(t, err)

			assert.Equal(t, tomatoFallback, resp.Response)
			assert.Equal(t, FallbackModel, resp.ModelUsed)
			assert.Equal(t, []string{FallbackModel}, f.metrics.answers)
		})
	}
}

func TestHandleQuery_ArticleFailureUsesStaticSet(t *testing.T) {
	f := newFixture(t, nil, AssistantServiceConfig{})
	f.articles.err = errors.New("connection refused")

	resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
		Message: "How do I grow tomatoes?",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ArticlesUsed)
	assert.Equal(t, 1, f.metrics.articleFallbacks)
	assert.Equal(t, 1, f.static.calls)
}

func TestHandleQuery_UseStaticData(t *testing.T) {
	gen := &fakeGenerator{text: "ok", model: "m"}
	f := newFixture(t, gen, AssistantServiceConfig{})

	resp, err := f.service.HandleQuery(context.Background(), &domain.AssistantRequest{
		Message:       "How do I grow tomatoes?",
		UseStaticData: true,
	})
	require.NoError(t, err)

	assert.True(t, resp.TestMode)
	assert.Equal(t, 1, resp.ArticlesUsed)
	assert.Zero(t, f.articles.calls)
	assert.Zero(t, f.metrics.articleFallbacks)
	assert.Contains(t, gen.prompt, "Title: Static")
}

func TestHandleQuery_MaxResponseProducts(t *testing.T) {
	products := make([]domain.Product, 0, 12)
	for i := 0; i < 12; i++ {
		products = append(products, domain.Product{ID: string(rune('a' + i)), Name: "P"})
	}

	c := catalog.MustDefault()
	newService := func(max int) *AssistantService {
		return NewAssistantService(AssistantDeps{
			Classifier:     NewQueryClassifier(c.CropNames(), zerolog.Nop()),
			Matcher:        stubMatcher{products: products},
			StaticArticles: &fakeArticles{},
			Logger:         zerolog.Nop(),
		}, AssistantServiceConfig{MaxResponseProducts: max})
	}

	req := &domain.AssistantRequest{Message: "best tools for tomatoes"}

	resp, err := newService(0).HandleQuery(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Products, 10)

	resp, err = newService(4).HandleQuery(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Products, 4)
}

func TestSelfTest(t *testing.T) {
	gen := &fakeGenerator{text: "Use stakes.", model: "m"}
	f := newFixture(t, gen, AssistantServiceConfig{})

	result := f.service.SelfTest(context.Background())

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, selfTestQuery, result.TestQuery)
	require.NotNil(t, result.Result)
	assert.True(t, result.Result.TestMode)
	assert.Equal(t, domain.QueryTypeProduct, result.Result.QueryType)
	assert.Equal(t, []string{"7", "19", "29"}, productIDs(result.Result.Products))
	assert.Zero(t, f.articles.calls)
}

func TestClassify_Passthrough(t *testing.T) {
	f := newFixture(t, nil, AssistantServiceConfig{})

	got := f.service.Classify("Tips for growing carrots")
	assert.Equal(t, domain.QueryTypeAdvice, got.QueryType)
	assert.Equal(t, "carrot", got.Crop)
}
