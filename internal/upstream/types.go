package upstream

// ChatMessage is one role/content pair of conversational context
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions tunes a completion request. Zero values fall back to
// the client's configured defaults.
type CompletionOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}
