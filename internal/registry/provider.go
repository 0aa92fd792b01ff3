// Package registry provides the static model catalog: canonical model ids,
// their capabilities, and the alias/provider resolution rules the rest of
// the proxy relies on to normalize client-supplied model names.
package registry

import "strings"

// ProviderTag is the closed set of model families the proxy understands.
type ProviderTag string

const (
	ProviderAnthropic  ProviderTag = "anthropic"
	ProviderOpenAI     ProviderTag = "openai"
	ProviderGoogle     ProviderTag = "google"
	ProviderXAI        ProviderTag = "xai"
	ProviderDeepSeek   ProviderTag = "deepseek"
	ProviderQwen       ProviderTag = "qwen"
	ProviderDoubao     ProviderTag = "doubao"
	ProviderOpenRouter ProviderTag = "openrouter"
	ProviderBedrock    ProviderTag = "bedrock"
	ProviderOllama     ProviderTag = "ollama"
	ProviderUnknown    ProviderTag = "unknown"
)

// prefixFamilies maps an unqualified model-name prefix to its provider.
// prefixToProvider checks the entries in declaration order and the first
// matching prefix wins, so a more specific prefix must be listed before a
// shorter one that would also match it.
var prefixFamilies = []struct {
	prefix   string
	provider ProviderTag
}{
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"gemini", ProviderGoogle},
	{"grok", ProviderXAI},
	{"deepseek", ProviderDeepSeek},
	{"qwen", ProviderQwen},
	{"doubao", ProviderDoubao},
}

func prefixToProvider(id string) (ProviderTag, bool) {
	lower := strings.ToLower(id)
	for _, fam := range prefixFamilies {
		if strings.HasPrefix(lower, fam.prefix) {
			return fam.provider, true
		}
	}
	return ProviderUnknown, false
}
