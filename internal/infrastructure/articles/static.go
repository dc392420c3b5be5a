package articles

import (
	"context"

	"github.com/agrihope/backend/internal/domain"
)

const staticArticleContent = `Modern agricultural tools designed for women farmers:

1. Lightweight Hand Hoes - Perfect for garden cultivation
2. Ergonomic Pruning Shears - Reduces hand strain during harvesting
3. Adjustable Watering Systems - Efficient irrigation solutions
4. Seed Planting Tools - Precision planting for better yields
5. Soil Testing Kits - Monitor soil health and nutrients
6. Harvest Baskets - Durable and comfortable carrying solutions

These tools are specifically designed to reduce physical strain while maximizing productivity in agricultural work.`

// StaticArticle is the built-in knowledge base entry used for test mode and
// whenever the article store is unreachable
func StaticArticle() domain.Article {
	return domain.Article{
		ID:       "test-1",
		Title:    "Essential Agricultural Tools for Women Farmers",
		Content:  staticArticleContent,
		Price:    150,
		Discount: 15,
	}
}

// StaticSource serves the built-in article. It never fails.
type StaticSource struct{}

// NewStaticSource creates the built-in article source
func NewStaticSource() StaticSource {
	return StaticSource{}
}

// FetchAll returns the single built-in article
func (StaticSource) FetchAll(ctx context.Context) ([]domain.Article, error) {
	return []domain.Article{StaticArticle()}, nil
}
