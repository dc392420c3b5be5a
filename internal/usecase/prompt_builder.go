package usecase

import (
	"fmt"
	"strings"

	"github.com/agrihope/backend/internal/domain"
)

// maxPromptProducts bounds the product block handed to the model
const maxPromptProducts = 5

// assistantSystemPrompt sets the persona and the advice/product behavior rules
const assistantSystemPrompt = `You are Touta, an AI assistant specifically designed to help women in agriculture. You have two main roles:

ADVICE MODE: When users ask for farming guidance, tips, or general agricultural knowledge
PRODUCT MODE: When users specifically ask for tools, equipment, or products to buy

Your expertise includes:
1. Crop growing guidance (planting, care, harvesting techniques)
2. Sustainable farming practices and methods
3. Seasonal farming advice and timing
4. Pest and disease management solutions
5. Soil health, fertilization, and nutrition
6. Agricultural tools and equipment recommendations (when specifically requested)

ADVICE QUERIES - When users ask "how to", "tips for", "best way to", "when to", "why", or seek general guidance:
- Provide detailed agricultural advice and step-by-step guidance
- Focus on methods, timing, techniques, and agricultural science
- Do NOT mention products unless specifically asked

PRODUCT QUERIES - When users explicitly ask for "tools", "equipment", "what to buy", or "need to purchase":
- Recommend ONLY relevant products from the marketplace data
- Provide specific product recommendations with prices and descriptions

ACCURACY RULES:
- NEVER mix advice and product recommendations unless both are requested
- Match products precisely to the crop and need mentioned
- If no relevant products exist, say so instead of recommending irrelevant items

Respond according to the query type detected by the system.`

const adviceModeBlock = `

ADVICE MODE ACTIVATED:
The user is seeking agricultural guidance and farming knowledge. Provide detailed farming advice, techniques, and educational information. Do NOT mention products or tools unless specifically asked. Focus on:
- Step-by-step farming techniques
- Best practices and timing
- Agricultural science and methods
- Problem-solving approaches

Available Agricultural Knowledge Base:
`

const productModeBlock = `

PRODUCT MODE ACTIVATED:
The user is looking for specific tools or products to purchase. Recommend ONLY relevant products from the marketplace that directly match their needs.

Available Agricultural Articles:
`

const productModeFooter = `

Focus on providing specific product recommendations with prices and descriptions.`

const noProductsNotice = `

No marketplace products match this request. Say so plainly and do not suggest unrelated items.`

const generalModeBlock = `

General agricultural assistance mode. Determine if the user needs advice or product recommendations based on their question.

Available Resources:
`

// PromptContext is the assembled system prompt and the products it mentions
type PromptContext struct {
	SystemPrompt string
	Products     []domain.Product
}

// BuildPrompt assembles the mode-specific system prompt. It is a pure
// function of its inputs; advice prompts never carry a product block.
func BuildPrompt(classification domain.Classification, articles []domain.Article, products []domain.Product) PromptContext {
	var sb strings.Builder
	sb.WriteString(assistantSystemPrompt)

	articleBlock := formatArticles(articles)
	productBlock := formatProducts(products)

	switch classification.QueryType {
	case domain.QueryTypeAdvice:
		sb.WriteString(adviceModeBlock)
		sb.WriteString(articleBlock)
		return PromptContext{SystemPrompt: sb.String(), Products: nil}

	case domain.QueryTypeProduct:
		sb.WriteString(productModeBlock)
		sb.WriteString(articleBlock)
		if productBlock != "" {
			sb.WriteString(productBlock)
		} else {
			sb.WriteString(noProductsNotice)
		}
		sb.WriteString(productModeFooter)

	default:
		sb.WriteString(generalModeBlock)
		sb.WriteString(articleBlock)
		sb.WriteString(productBlock)
	}

	return PromptContext{SystemPrompt: sb.String(), Products: truncate(products, maxPromptProducts)}
}

// formatArticles serializes the knowledge base for the prompt
func formatArticles(articles []domain.Article) string {
	parts := make([]string, 0, len(articles))
	for _, a := range articles {
		parts = append(parts, fmt.Sprintf("Title: %s\nContent: %s\nPrice: $%s\nDiscount: %s%%",
			a.Title, strings.TrimSpace(a.Content), formatAmount(a.Price), formatAmount(a.Discount)))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// formatProducts serializes matched products; empty when nothing matched
func formatProducts(products []domain.Product) string {
	if len(products) == 0 {
		return ""
	}

	lines := make([]string, 0, maxPromptProducts)
	for _, p := range truncate(products, maxPromptProducts) {
		lines = append(lines, fmt.Sprintf("%s - $%s (%s) - %s - Use cases: %s",
			p.Name, formatAmount(p.Price), p.Category, p.Description, strings.Join(p.UseCases, ", ")))
	}
	return "\n\nAVAILABLE PRODUCTS IN MARKETPLACE:\n" + strings.Join(lines, "\n")
}

// formatAmount drops trailing zeros the way the storefront displays prices
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
