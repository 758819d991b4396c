package domain

// ChatRequest is the body of POST /v1/chat. Context is the report the
// assistant must answer from; it is passed through verbatim.
type ChatRequest struct {
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

// TokenUsage reports LLM token consumption for one chat exchange.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// EnvCheck is the response of GET /v1/env-check.
type EnvCheck struct {
	HasAnthropicKey       bool `json:"hasAnthropicKey"`
	LooksLikeAnthropicKey bool `json:"looksLikeAnthropicKey"`
}

// PipelineMetrics is the JSON snapshot served by GET /v1/metrics/pipeline.
type PipelineMetrics struct {
	TotalRequests    int64   `json:"total_requests"`
	ErrorRate        float64 `json:"error_rate"`
	RowsParsed       int64   `json:"rows_parsed"`
	RowWarnings      int64   `json:"row_warnings"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
}
