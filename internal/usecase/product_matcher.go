package usecase

import (
	"strings"

	"github.com/agrihope/backend/internal/catalog"
	"github.com/agrihope/backend/internal/domain"
	"github.com/rs/zerolog"
)

// MatchTier names the precision level that produced a match
type MatchTier string

const (
	TierNone    MatchTier = "none"
	TierCrop    MatchTier = "crop"
	TierDomain  MatchTier = "domain"
	TierKeyword MatchTier = "keyword"
	TierUseCase MatchTier = "use_case"
)

// Result caps
const (
	defaultCropTierLimit = 3
	defaultResultLimit   = 3
	maxResultLimit       = 10
)

// toolKeywords gate the lower tiers: without one of these the matcher only
// answers for explicit crop mentions
var toolKeywords = []string{"tool", "equipment", "shear", "hoe", "spade", "fertilizer", "seed", "kit"}

// MatchConfig holds configuration for the product matcher
type MatchConfig struct {
	CropTierLimit int
	ResultLimit   int
}

// ProductMatcher selects a small set of clearly relevant catalog products.
// There is no relevance score: order is tier priority, then catalog order.
type ProductMatcher struct {
	catalog       *catalog.Catalog
	cropTierLimit int
	resultLimit   int
	logger        zerolog.Logger
}

// NewProductMatcher creates a matcher over a loaded catalog
func NewProductMatcher(c *catalog.Catalog, config MatchConfig, logger zerolog.Logger) *ProductMatcher {
	cropLimit := config.CropTierLimit
	if cropLimit <= 0 {
		cropLimit = defaultCropTierLimit
	}

	resultLimit := config.ResultLimit
	if resultLimit <= 0 {
		resultLimit = defaultResultLimit
	}
	if resultLimit > maxResultLimit {
		resultLimit = maxResultLimit
	}

	return &ProductMatcher{
		catalog:       c,
		cropTierLimit: cropLimit,
		resultLimit:   resultLimit,
		logger:        logger.With().Str("component", "matcher").Logger(),
	}
}

// Match returns the products relevant to the search terms. An empty result
// means there are no relevant products and must not be padded.
func (m *ProductMatcher) Match(searchTerms string) []domain.Product {
	products, _ := m.MatchWithTier(searchTerms)
	return products
}

// MatchWithTier is Match that also reports which tier answered
func (m *ProductMatcher) MatchWithTier(searchTerms string) ([]domain.Product, MatchTier) {
	lower := strings.ToLower(searchTerms)
	products := m.catalog.Products()

	// Tier 1: crop-specific products short-circuit everything else
	for _, mapping := range m.catalog.Crops() {
		if !strings.Contains(lower, mapping.Crop) {
			continue
		}
		found := filterByNames(products, mapping.Products)
		if len(found) > 0 {
			result := truncate(dedupeByID(found), m.cropTierLimit)
			m.logMatch(searchTerms, TierCrop, len(result))
			return result, TierCrop
		}
	}

	if !containsAny(lower, toolKeywords) {
		m.logMatch(searchTerms, TierNone, 0)
		return []domain.Product{}, TierNone
	}

	// Tier 2: named domain surface, otherwise a literal name/keyword/tag match
	var collected []domain.Product
	tier := TierKeyword
	if d, ok := m.findDomain(lower); ok {
		tier = TierDomain
		collected = filterByDomain(products, d)
	} else {
		collected = filterBySubstring(products, lower)
	}

	// Tier 3: use-case phrases
	if len(collected) == 0 {
		tier = TierUseCase
		for _, uc := range m.catalog.UseCases() {
			if strings.Contains(lower, uc.Phrase()) {
				collected = append(collected, filterByNames(products, uc.Products)...)
			}
		}
	}

	if len(collected) == 0 {
		m.logMatch(searchTerms, TierNone, 0)
		return []domain.Product{}, TierNone
	}

	result := truncate(dedupeByID(collected), m.resultLimit)
	m.logMatch(searchTerms, tier, len(result))
	return result, tier
}

func (m *ProductMatcher) findDomain(lower string) (catalog.Domain, bool) {
	for _, d := range m.catalog.Domains() {
		for _, trigger := range d.Triggers {
			if strings.Contains(lower, strings.ToLower(trigger)) {
				return d, true
			}
		}
	}
	return catalog.Domain{}, false
}

func (m *ProductMatcher) logMatch(searchTerms string, tier MatchTier, count int) {
	m.logger.Debug().
		Str("search_terms", searchTerms).
		Str("tier", string(tier)).
		Int("count", count).
		Msg("matched products")
}

// filterByNames keeps products whose name contains any of the given names
func filterByNames(products []domain.Product, names []string) []domain.Product {
	var result []domain.Product
	for _, p := range products {
		nameLower := strings.ToLower(p.Name)
		for _, n := range names {
			if strings.Contains(nameLower, strings.ToLower(n)) {
				result = append(result, p)
				break
			}
		}
	}
	return result
}

// filterByDomain keeps products whose keywords or crops hit the domain sets
func filterByDomain(products []domain.Product, d catalog.Domain) []domain.Product {
	keywords := lowerSet(d.Keywords)
	crops := lowerSet(d.Crops)

	var result []domain.Product
	for _, p := range products {
		if anyInSet(p.Keywords, keywords) || anyInSet(p.Crops, crops) {
			result = append(result, p)
		}
	}
	return result
}

// filterBySubstring keeps products whose name, keywords or tags contain the text
func filterBySubstring(products []domain.Product, lower string) []domain.Product {
	var result []domain.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), lower) ||
			anyContains(p.Keywords, lower) ||
			anyContains(p.Tags, lower) {
			result = append(result, p)
		}
	}
	return result
}

// dedupeByID removes repeated products, keeping the first occurrence
func dedupeByID(products []domain.Product) []domain.Product {
	seen := make(map[string]bool, len(products))
	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		result = append(result, p)
	}
	return result
}

func truncate(products []domain.Product, limit int) []domain.Product {
	if len(products) > limit {
		return products[:limit]
	}
	return products
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}

func anyInSet(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[strings.ToLower(v)] {
			return true
		}
	}
	return false
}

func anyContains(values []string, lower string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), lower) {
			return true
		}
	}
	return false
}
