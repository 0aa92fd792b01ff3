package registry

// Capabilities records the optional features a model advertises.
type Capabilities struct {
	Thinking   bool `json:"thinking"`
	Vision     bool `json:"vision"`
	Tools      bool `json:"tools"`
	Streaming  bool `json:"streaming"`
	JSONMode   bool `json:"json_mode"`
	WebSearch  bool `json:"web_search"`
}

// ModelEntry is an immutable catalog entry for a canonical model id.
type ModelEntry struct {
	ID             string       `json:"id"`
	Provider       ProviderTag  `json:"provider"`
	MinTokens      int          `json:"min_tokens"`
	MaxTokens      int          `json:"max_tokens"`
	DefaultTokens  int          `json:"default_tokens"`
	ContextWindow  int          `json:"context_window"`
	Capabilities   Capabilities `json:"capabilities"`
}
