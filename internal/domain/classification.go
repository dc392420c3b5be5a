package domain

// QueryType is the detected intent of an assistant message
type QueryType string

const (
	QueryTypeAdvice  QueryType = "advice"
	QueryTypeProduct QueryType = "product"
	QueryTypeGeneral QueryType = "general"
)

// Classification is the result of interpreting a user message
type Classification struct {
	QueryType   QueryType `json:"queryType"`
	Confidence  float64   `json:"confidence"` // 0-1
	SearchTerms string    `json:"searchTerms"`
	Crop        string    `json:"crop,omitempty"`
}
