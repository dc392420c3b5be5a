package domain

// Article is a knowledge base entry used as context for generated answers
type Article struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
}
