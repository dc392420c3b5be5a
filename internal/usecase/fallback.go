package usecase

import "strings"

// Canned answers used when no generation model is reachable
const (
	tomatoFallback = "Tomatoes thrive in well-drained soil with plenty of sunlight! Plant them after the last frost, water regularly but avoid overwatering, and consider using tomato cages for support. They typically need 6-8 hours of direct sunlight daily."

	toolFallback = "Essential tools for women farmers include lightweight hand hoes, ergonomic pruning shears, adjustable watering systems, and comfortable harvest baskets. These tools are designed to reduce strain while maximizing productivity."

	diseaseFallback = "Common plant diseases can be prevented with proper spacing for air circulation, avoiding overhead watering, and regular inspection. For pest control, consider companion planting, beneficial insects, and organic pesticides as needed."

	soilFallback = "Healthy soil is the foundation of successful farming! Test your soil pH (most crops prefer 6.0-7.0), add organic compost regularly, ensure good drainage, and rotate crops to maintain soil health."

	waterFallback = "Efficient watering involves deep, less frequent watering rather than shallow daily watering. Consider drip irrigation systems to conserve water and deliver it directly to plant roots."

	genericFallback = "I'm here to help with your agricultural questions! Whether you need advice on crop growing, tool recommendations, pest management, or sustainable farming practices, I'm ready to assist. What specific aspect of farming would you like to know more about?"

	// RedirectResponse answers messages that are not about agriculture
	RedirectResponse = "I'm specialized in agricultural assistance for women farmers. Please ask me about farming, crops, agricultural tools, or farming practices. I'm here to help you succeed in agriculture! 🌱"

	// ApologyResponse is returned when the pipeline itself fails unexpectedly
	ApologyResponse = "I'm your agricultural assistant and I'm here to help! Please ask me about farming, crops, agricultural tools, or sustainable farming practices. 🌾"

	// FallbackModel marks answers that came from the canned rules
	FallbackModel = "fallback"
)

// fallbackRule maps topic keywords to a canned answer
type fallbackRule struct {
	keywords []string
	answer   string
}

// fallbackRules are checked in order; the first rule with a contained
// keyword answers
var fallbackRules = []fallbackRule{
	{keywords: []string{"tomato"}, answer: tomatoFallback},
	{keywords: []string{"tool", "equipment"}, answer: toolFallback},
	{keywords: []string{"disease", "pest"}, answer: diseaseFallback},
	{keywords: []string{"soil"}, answer: soilFallback},
	{keywords: []string{"water", "irrigation"}, answer: waterFallback},
}

// agricultureKeywords decide whether a message is in scope at all
var agricultureKeywords = []string{
	"farm", "crop", "plant", "grow", "harvest", "soil", "seed", "agriculture",
	"farming", "garden", "pest", "fertilizer", "irrigation", "tomato", "potato",
	"vegetable", "fruit", "tool", "equipment", "cultivation", "planting",
	"watering", "organic", "sustainable", "yield", "livestock", "greenhouse",
	"compost", "mulch", "pruning", "weeding", "tractor", "hoe", "shovel",
}

// FallbackResponse picks a canned answer by topic keyword. It has no
// dependencies and cannot fail.
func FallbackResponse(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range fallbackRules {
		if containsAny(lower, rule.keywords) {
			return rule.answer
		}
	}
	return genericFallback
}

// IsAgricultureRelated reports whether a message is about farming
func IsAgricultureRelated(message string) bool {
	return containsAny(strings.ToLower(message), agricultureKeywords)
}
