package registry

// catalog is the static set of canonical models known to the proxy. It is
// intentionally data-heavy and mirrors how the teacher's model registries
// are built: a flat table keyed by canonical id, populated once at startup.
var catalog = []ModelEntry{
	{
		ID: "anthropic/claude-opus-4-20250514", Provider: ProviderAnthropic,
		MinTokens: 1, MaxTokens: 32000, DefaultTokens: 4096, ContextWindow: 200000,
		Capabilities: Capabilities{Thinking: true, Vision: true, Tools: true, Streaming: true, JSONMode: true},
	},
	{
		ID: "anthropic/claude-sonnet-4-20250514", Provider: ProviderAnthropic,
		MinTokens: 1, MaxTokens: 64000, DefaultTokens: 4096, ContextWindow: 200000,
		Capabilities: Capabilities{Thinking: true, Vision: true, Tools: true, Streaming: true, JSONMode: true},
	},
	{
		ID: "anthropic/claude-3-5-haiku-20241022", Provider: ProviderAnthropic,
		MinTokens: 1, MaxTokens: 8192, DefaultTokens: 4096, ContextWindow: 200000,
		Capabilities: Capabilities{Vision: true, Tools: true, Streaming: true, JSONMode: true},
	},
	{
		ID: "openai/gpt-4o", Provider: ProviderOpenAI,
		MinTokens: 1, MaxTokens: 16384, DefaultTokens: 4096, ContextWindow: 128000,
		Capabilities: Capabilities{Vision: true, Tools: true, Streaming: true, JSONMode: true},
	},
	{
		ID: "openai/gpt-4o-mini", Provider: ProviderOpenAI,
		MinTokens: 1, MaxTokens: 16384, DefaultTokens: 4096, ContextWindow: 128000,
		Capabilities: Capabilities{Vision: true, Tools: true, Streaming: true, JSONMode: true},
	},
	{
		ID: "openai/o3", Provider: ProviderOpenAI,
		MinTokens: 1, MaxTokens: 100000, DefaultTokens: 8192, ContextWindow: 200000,
		Capabilities: Capabilities{Thinking: true, Tools: true, Streaming: true, JSONMode: true},
	},
	{
		ID: "openai/o4-mini", Provider: ProviderOpenAI,
		MinTokens: 1, MaxTokens: 100000, DefaultTokens: 8192, ContextWindow: 200000,
		Capabilities: Capabilities{Thinking: true, Tools: true, Streaming: true, JSONMode: true},
	},
	{
		ID: "google/gemini-2.5-pro", Provider: ProviderGoogle,
		MinTokens: 1024, MaxTokens: 65536, DefaultTokens: 8192, ContextWindow: 1048576,
		Capabilities: Capabilities{Thinking: true, Vision: true, Tools: true, Streaming: true, JSONMode: true, WebSearch: true},
	},
	{
		ID: "google/gemini-2.5-flash", Provider: ProviderGoogle,
		MinTokens: 0, MaxTokens: 24576, DefaultTokens: 8192, ContextWindow: 1048576,
		Capabilities: Capabilities{Thinking: true, Vision: true, Tools: true, Streaming: true, JSONMode: true},
	},
	{
		ID: "xai/grok-4", Provider: ProviderXAI,
		MinTokens: 1, MaxTokens: 32768, DefaultTokens: 4096, ContextWindow: 256000,
		Capabilities: Capabilities{Thinking: true, Tools: true, Streaming: true},
	},
	{
		ID: "xai/grok-3", Provider: ProviderXAI,
		MinTokens: 1, MaxTokens: 32768, DefaultTokens: 4096, ContextWindow: 131072,
		Capabilities: Capabilities{Tools: true, Streaming: true},
	},
	{
		ID: "deepseek/deepseek-r1", Provider: ProviderDeepSeek,
		MinTokens: 1, MaxTokens: 64000, DefaultTokens: 4096, ContextWindow: 64000,
		Capabilities: Capabilities{Thinking: true, Streaming: true},
	},
	{
		ID: "deepseek/deepseek-chat", Provider: ProviderDeepSeek,
		MinTokens: 1, MaxTokens: 8192, DefaultTokens: 4096, ContextWindow: 64000,
		Capabilities: Capabilities{Tools: true, Streaming: true},
	},
	{
		ID: "qwen/qwen3-235b", Provider: ProviderQwen,
		MinTokens: 1, MaxTokens: 32768, DefaultTokens: 4096, ContextWindow: 131072,
		Capabilities: Capabilities{Thinking: true, Tools: true, Streaming: true},
	},
	{
		ID: "doubao/doubao-pro-32k", Provider: ProviderDoubao,
		MinTokens: 1, MaxTokens: 4096, DefaultTokens: 2048, ContextWindow: 32768,
		Capabilities: Capabilities{Streaming: true},
	},
}

// aliases maps unqualified or short-form model names to their canonical id.
var aliases = map[string]string{
	"claude-opus-4":       "anthropic/claude-opus-4-20250514",
	"claude-opus":         "anthropic/claude-opus-4-20250514",
	"claude-sonnet-4":     "anthropic/claude-sonnet-4-20250514",
	"claude-sonnet":       "anthropic/claude-sonnet-4-20250514",
	"claude-3-5-haiku":    "anthropic/claude-3-5-haiku-20241022",
	"claude-haiku":        "anthropic/claude-3-5-haiku-20241022",
	"gpt-4o":              "openai/gpt-4o",
	"gpt-4o-mini":         "openai/gpt-4o-mini",
	"o3":                  "openai/o3",
	"o4-mini":             "openai/o4-mini",
	"gemini-2.5-pro":      "google/gemini-2.5-pro",
	"gemini-2.5-flash":    "google/gemini-2.5-flash",
	"grok-4":              "xai/grok-4",
	"grok-3":              "xai/grok-3",
	"deepseek-r1":         "deepseek/deepseek-r1",
	"deepseek-chat":       "deepseek/deepseek-chat",
	"qwen3-235b":          "qwen/qwen3-235b",
	"doubao-pro-32k":      "doubao/doubao-pro-32k",
}
