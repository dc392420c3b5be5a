package domain

// AssistantRequest represents a question sent to the farming assistant
type AssistantRequest struct {
	Message       string `json:"message"`
	UseStaticData bool   `json:"useStaticData,omitempty"`
}

// AssistantResponse is the structured answer returned to the chat UI
type AssistantResponse struct {
	Response     string    `json:"response"`
	ResponseTime int64     `json:"responseTime"` // milliseconds
	ArticlesUsed int       `json:"articlesUsed"`
	TestMode     bool      `json:"testMode"`
	ModelUsed    string    `json:"modelUsed,omitempty"`
	HasProducts  bool      `json:"hasProducts"`
	Products     []Product `json:"products"`
	QueryType    QueryType `json:"queryType,omitempty"`
	Confidence   float64   `json:"confidence"`
}

// SelfTestResult reports a canned end-to-end run of the assistant pipeline
type SelfTestResult struct {
	Message   string             `json:"message"`
	TestQuery string             `json:"testQuery"`
	Result    *AssistantResponse `json:"result,omitempty"`
	TotalTime int64              `json:"totalTime"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
}
