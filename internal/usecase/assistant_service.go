package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/agrihope/backend/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultProductConfidenceThreshold = 0.6
	defaultMaxResponseProducts        = 10

	selfTestQuery = "What are the best tools for growing tomatoes?"
)

// ProductFinder is the matching behavior the assistant depends on
type ProductFinder interface {
	MatchWithTier(searchTerms string) ([]domain.Product, MatchTier)
}

// MetricsRecorder receives pipeline observations. All methods must be safe
// for concurrent use.
type MetricsRecorder interface {
	RecordClassification(queryType domain.QueryType)
	RecordMatch(tier MatchTier, count int)
	RecordAnswer(model string, duration time.Duration)
	RecordArticleFallback()
}

type noopRecorder struct{}

func (noopRecorder) RecordClassification(domain.QueryType) {}
func (noopRecorder) RecordMatch(MatchTier, int)            {}
func (noopRecorder) RecordAnswer(string, time.Duration)    {}
func (noopRecorder) RecordArticleFallback()                {}

// AssistantServiceConfig holds configuration for the assistant pipeline
type AssistantServiceConfig struct {
	ProductConfidenceThreshold float64
	MaxResponseProducts        int
}

// AssistantDeps are the collaborators of the assistant pipeline. Generator
// and Metrics may be nil.
type AssistantDeps struct {
	Classifier     *QueryClassifier
	Matcher        ProductFinder
	Articles       domain.ArticleSource
	StaticArticles domain.ArticleSource
	Generator      domain.AnswerGenerator
	Metrics        MetricsRecorder
	Logger         zerolog.Logger
}

// AssistantService answers farming questions with advice or products
type AssistantService struct {
	classifier     *QueryClassifier
	matcher        ProductFinder
	articles       domain.ArticleSource
	staticArticles domain.ArticleSource
	generator      domain.AnswerGenerator
	metrics        MetricsRecorder
	logger         zerolog.Logger

	threshold   float64
	maxProducts int
}

// NewAssistantService creates the assistant pipeline
func NewAssistantService(deps AssistantDeps, config AssistantServiceConfig) *AssistantService {
	threshold := config.ProductConfidenceThreshold
	if threshold <= 0 {
		threshold = defaultProductConfidenceThreshold
	}

	maxProducts := config.MaxResponseProducts
	if maxProducts <= 0 {
		maxProducts = defaultMaxResponseProducts
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopRecorder{}
	}

	return &AssistantService{
		classifier:     deps.Classifier,
		matcher:        deps.Matcher,
		articles:       deps.Articles,
		staticArticles: deps.StaticArticles,
		generator:      deps.Generator,
		metrics:        metrics,
		logger:         deps.Logger.With().Str("component", "assistant").Logger(),
		threshold:      threshold,
		maxProducts:    maxProducts,
	}
}

// HandleQuery runs a message through the pipeline.
// Flow: validate -> classify -> relevance gate -> articles -> match -> prompt -> generate or fall back.
// The only error is ErrEmptyMessage; every collaborator failure degrades.
func (s *AssistantService) HandleQuery(ctx context.Context, request *domain.AssistantRequest) (*domain.AssistantResponse, error) {
	start := time.Now()

	if request == nil || strings.TrimSpace(request.Message) == "" {
		return nil, domain.ErrEmptyMessage
	}
	message := request.Message

	classification := s.classifier.Classify(message)
	s.metrics.RecordClassification(classification.QueryType)

	if !IsAgricultureRelated(message) {
		s.logger.Info().Str("query_type", string(classification.QueryType)).Msg("off-topic message redirected")
		return &domain.AssistantResponse{
			Response:     RedirectResponse,
			ResponseTime: time.Since(start).Milliseconds(),
			TestMode:     request.UseStaticData,
			Products:     []domain.Product{},
			QueryType:    classification.QueryType,
			Confidence:   classification.Confidence,
		}, nil
	}

	articles := s.loadArticles(ctx, request.UseStaticData)

	products := []domain.Product{}
	if classification.QueryType == domain.QueryTypeProduct && classification.Confidence > s.threshold {
		matched, tier := s.matcher.MatchWithTier(classification.SearchTerms)
		s.metrics.RecordMatch(tier, len(matched))
		products = matched
	}

	prompt := BuildPrompt(classification, articles, products)
	answer, model := s.generate(ctx, prompt.SystemPrompt, message)
	s.metrics.RecordAnswer(model, time.Since(start))

	products = truncate(products, s.maxProducts)

	return &domain.AssistantResponse{
		Response:     answer,
		ResponseTime: time.Since(start).Milliseconds(),
		ArticlesUsed: len(articles),
		TestMode:     request.UseStaticData,
		ModelUsed:    model,
		HasProducts:  len(products) > 0,
		Products:     products,
		QueryType:    classification.QueryType,
		Confidence:   classification.Confidence,
	}, nil
}

// Classify exposes the classifier for callers that only need the intent
func (s *AssistantService) Classify(message string) domain.Classification {
	return s.classifier.Classify(message)
}

// SelfTest runs a fixed query against the static knowledge base
func (s *AssistantService) SelfTest(ctx context.Context) *domain.SelfTestResult {
	start := time.Now()

	result, err := s.HandleQuery(ctx, &domain.AssistantRequest{
		Message:       selfTestQuery,
		UseStaticData: true,
	})
	if err != nil {
		return &domain.SelfTestResult{
			Message:   "AI Assistant Performance Test Failed",
			TestQuery: selfTestQuery,
			TotalTime: time.Since(start).Milliseconds(),
			Status:    "failed",
			Error:     err.Error(),
		}
	}

	return &domain.SelfTestResult{
		Message:   "AI Assistant Performance Test",
		TestQuery: selfTestQuery,
		Result:    result,
		TotalTime: time.Since(start).Milliseconds(),
		Status:    "success",
	}
}

// loadArticles returns the knowledge base, degrading to the static set
func (s *AssistantService) loadArticles(ctx context.Context, useStatic bool) []domain.Article {
	if useStatic || s.articles == nil {
		return s.staticSet(ctx)
	}

	articles, err := s.articles.FetchAll(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("article fetch failed, using static data")
		s.metrics.RecordArticleFallback()
		return s.staticSet(ctx)
	}
	return articles
}

func (s *AssistantService) staticSet(ctx context.Context) []domain.Article {
	if s.staticArticles == nil {
		return nil
	}
	articles, err := s.staticArticles.FetchAll(ctx)
	if err != nil {
		return nil
	}
	return articles
}

// generate asks the model chain for an answer and falls back to canned rules
func (s *AssistantService) generate(ctx context.Context, systemPrompt, message string) (string, string) {
	if s.generator == nil {
		return FallbackResponse(message), FallbackModel
	}

	text, model, err := s.generator.Generate(ctx, systemPrompt, message)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn().Err(err).Msg("generation unavailable, using fallback answer")
		return FallbackResponse(message), FallbackModel
	}
	return text, model
}
