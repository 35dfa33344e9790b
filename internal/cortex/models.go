package cortex

// Request models
type CompleteRequest struct {
	Model    string          `json:"model"`
	Messages []PromptMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type PromptMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

type SearchRequest struct {
	Service string         `json:"-"`
	Query   string         `json:"query"`
	Columns []string       `json:"columns,omitempty"`
	Filter  map[string]any `json:"filter,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

// Response models
type CompleteResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

type Choice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// SearchResult is one row of the searched table; keys are the requested columns.
type SearchResult map[string]any

// String returns the column value as a string, or "" when absent.
func (r SearchResult) String(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	RequestID string         `json:"request_id"`
}

// SearchService describes a managed search service and the column it indexes.
type SearchService struct {
	Name         string `json:"name"`
	SearchColumn string `json:"search_column"`
}
