package usecase

import (
	"math"
	"strings"

	"github.com/agrihope/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Confidence scoring for keyword-driven intent detection
const (
	baseConfidence       = 0.3
	perKeywordConfidence = 0.2
	maxKeywordConfidence = 0.9
	growingConfidence    = 0.7 // "growing" without "tool" reads as advice
	supplyConfidence     = 0.8 // fertilizer/seed questions read as shopping
)

// explicitProductKeywords signal commercial intent. Substring matched, so
// "tools" counts for both "tool" and "tools".
var explicitProductKeywords = []string{
	"tool", "tools", "equipment", "buy", "purchase", "need to buy",
	"recommend tool", "what tool", "which tool", "best tool",
	"show me tool", "find tool", "looking for tool", "where to get",
	"i need a", "help me find", "shopping for", "market",
	"price", "cost", "sell", "available for sale",
}

// explicitAdviceKeywords signal a request for guidance
var explicitAdviceKeywords = []string{
	"how to", "how do i", "what should i do", "tips for", "advice",
	"help me grow", "growing tips", "best way to", "when to",
	"how can i", "what is the best method", "guide", "steps to",
	"can you explain", "teach me", "learn about", "understand",
	"why", "what causes", "problem with", "disease", "pest",
}

// QueryClassifier decides whether a message asks for advice or products
type QueryClassifier struct {
	crops  []string
	logger zerolog.Logger
}

// NewQueryClassifier creates a classifier that recognizes the given crops.
// Crop order is the tie-break: the first crop contained in a message wins.
func NewQueryClassifier(crops []string, logger zerolog.Logger) *QueryClassifier {
	lowered := make([]string, 0, len(crops))
	for _, c := range crops {
		lowered = append(lowered, strings.ToLower(c))
	}

	return &QueryClassifier{
		crops:  lowered,
		logger: logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify interprets a message. Product keywords take precedence over advice
// keywords when both are present: commercial intent wins.
func (c *QueryClassifier) Classify(message string) domain.Classification {
	lower := strings.ToLower(message)

	productMatches := countContained(lower, explicitProductKeywords)
	adviceMatches := countContained(lower, explicitAdviceKeywords)

	result := domain.Classification{
		QueryType:  domain.QueryTypeGeneral,
		Confidence: 0,
	}

	switch {
	case productMatches > 0:
		result.QueryType = domain.QueryTypeProduct
		result.Confidence = keywordConfidence(productMatches)
	case adviceMatches > 0:
		result.QueryType = domain.QueryTypeAdvice
		result.Confidence = keywordConfidence(adviceMatches)
	}

	result.Crop = c.detectCrop(lower)

	// Overrides only ever raise confidence
	if strings.Contains(lower, "growing") && !strings.Contains(lower, "tool") {
		result.QueryType = domain.QueryTypeAdvice
		result.Confidence = math.Max(result.Confidence, growingConfidence)
	}
	if strings.Contains(lower, "fertilizer") || strings.Contains(lower, "seed") {
		result.QueryType = domain.QueryTypeProduct
		result.Confidence = math.Max(result.Confidence, supplyConfidence)
	}

	if result.Crop != "" {
		result.SearchTerms = result.Crop
	} else {
		result.SearchTerms = message
	}

	c.logger.Debug().
		Str("query_type", string(result.QueryType)).
		Float64("confidence", result.Confidence).
		Str("crop", result.Crop).
		Int("product_hits", productMatches).
		Int("advice_hits", adviceMatches).
		Msg("classified query")

	return result
}

// detectCrop returns the first known crop contained in the lowercased text
func (c *QueryClassifier) detectCrop(lower string) string {
	for _, crop := range c.crops {
		if strings.Contains(lower, crop) {
			return crop
		}
	}
	return ""
}

func keywordConfidence(matches int) float64 {
	return math.Min(maxKeywordConfidence, baseConfidence+float64(matches)*perKeywordConfidence)
}

// countContained counts how many keywords appear in text
func countContained(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

// containsAny reports whether text contains at least one keyword
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
