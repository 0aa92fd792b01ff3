package reasoning

import (
	"testing"

	"github.com/routekeeper/gatewayproxy/internal/registry"
)

func geminiModel() registry.ModelEntry {
	return registry.ModelEntry{ID: "google/gemini-2.5-pro", Provider: registry.ProviderGoogle, MinTokens: 1024, MaxTokens: 65536}
}

func TestTranslate_DisabledReturnsEmpty(t *testing.T) {
	t.Parallel()
	got := Translate(registry.ProviderAnthropic, Intent{Enabled: false}, geminiModel())
	if len(got) != 0 {
		t.Fatalf("Translate(disabled) = %v, want empty", got)
	}
}

func TestTranslate_GeminiHighEffort(t *testing.T) {
	t.Parallel()
	intent := Intent{Enabled: true, Effort: EffortHigh, IncludeThoughts: true}
	got := Translate(registry.ProviderGoogle, intent, geminiModel())

	cfg, ok := got["thinkingConfig"].(map[string]any)
	if !ok {
		t.Fatalf("thinkingConfig missing or wrong type: %v", got)
	}
	if cfg["thinkingBudget"] != 49408 {
		t.Errorf("thinkingBudget = %v, want 49408", cfg["thinkingBudget"])
	}
	if cfg["includeThoughts"] != true {
		t.Errorf("includeThoughts = %v, want true", cfg["includeThoughts"])
	}
}

func TestTranslate_GeminiAutoIsDynamic(t *testing.T) {
	t.Parallel()
	intent := Intent{Enabled: true, Effort: EffortAuto}
	got := Translate(registry.ProviderGoogle, intent, geminiModel())
	cfg := got["thinkingConfig"].(map[string]any)
	if cfg["thinkingBudget"] != -1 {
		t.Errorf("thinkingBudget = %v, want -1 for auto", cfg["thinkingBudget"])
	}
}

func TestTranslate_AnthropicShape(t *testing.T) {
	t.Parallel()
	budget := uint32(4096)
	intent := Intent{Enabled: true, BudgetTokens: &budget}
	got := Translate(registry.ProviderAnthropic, intent, registry.ModelEntry{MinTokens: 1, MaxTokens: 32000})
	thinking, ok := got["thinking"].(map[string]any)
	if !ok {
		t.Fatalf("thinking missing: %v", got)
	}
	if thinking["type"] != "enabled" || thinking["budget_tokens"] != 4096 {
		t.Errorf("thinking = %v", thinking)
	}
}

func TestTranslate_OpenAIEffortMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		effort Effort
		want   string
	}{
		{EffortMinimal, "low"},
		{EffortLow, "low"},
		{EffortMedium, "medium"},
		{EffortHigh, "high"},
		{EffortXHigh, "high"},
		{EffortAuto, "medium"},
	}
	for _, tt := range tests {
		got := Translate(registry.ProviderOpenAI, Intent{Enabled: true, Effort: tt.effort}, registry.ModelEntry{})
		if got["reasoningEffort"] != tt.want {
			t.Errorf("effort %q -> %v, want %q", tt.effort, got["reasoningEffort"], tt.want)
		}
	}
}

func TestTranslate_OpenAIIncludeThoughtsSummary(t *testing.T) {
	t.Parallel()
	got := Translate(registry.ProviderOpenAI, Intent{Enabled: true, IncludeThoughts: true}, registry.ModelEntry{})
	if got["reasoningSummary"] != "auto" {
		t.Errorf("reasoningSummary = %v, want auto", got["reasoningSummary"])
	}
}

func TestTranslate_XAIEffort(t *testing.T) {
	t.Parallel()
	for _, e := range []Effort{EffortHigh, EffortXHigh} {
		got := Translate(registry.ProviderXAI, Intent{Enabled: true, Effort: e}, registry.ModelEntry{})
		if got["reasoningEffort"] != "high" {
			t.Errorf("xai effort %q -> %v, want high", e, got["reasoningEffort"])
		}
	}
	got := Translate(registry.ProviderXAI, Intent{Enabled: true, Effort: EffortLow}, registry.ModelEntry{})
	if got["reasoningEffort"] != "low" {
		t.Errorf("xai low effort -> %v, want low", got["reasoningEffort"])
	}
}

func TestTranslate_DeepSeekR1VsChat(t *testing.T) {
	t.Parallel()
	r1 := Translate(registry.ProviderDeepSeek, Intent{Enabled: true}, registry.ModelEntry{ID: "deepseek/deepseek-r1"})
	if _, ok := r1["thinking"]; !ok {
		t.Errorf("deepseek-r1 should emit thinking fragment, got %v", r1)
	}
	chat := Translate(registry.ProviderDeepSeek, Intent{Enabled: true}, registry.ModelEntry{ID: "deepseek/deepseek-chat"})
	if chat["enable_thinking"] != true {
		t.Errorf("deepseek-chat should emit enable_thinking, got %v", chat)
	}
}

func TestTranslate_UnknownProviderFallsBackToOpenAIShape(t *testing.T) {
	t.Parallel()
	got := Translate(registry.ProviderUnknown, Intent{Enabled: true, Effort: EffortHigh}, registry.ModelEntry{})
	if got["reasoningEffort"] != "high" {
		t.Errorf("unknown provider fallback = %v, want openai shape", got)
	}
}

func TestBudgetForEffort_AbsoluteFloor(t *testing.T) {
	t.Parallel()
	got := BudgetForEffort(EffortMinimal, 0, 512, nil)
	if got < absoluteFloorBudget {
		t.Errorf("BudgetForEffort below floor: %d", got)
	}
}

func TestBudgetForEffort_UnknownModelRangeStillRespectsFloor(t *testing.T) {
	t.Parallel()
	got := BudgetForEffort(EffortHigh, 0, 0, nil)
	if got < absoluteFloorBudget {
		t.Errorf("BudgetForEffort(unknown model) = %d, want >= floor %d", got, absoluteFloorBudget)
	}

	explicit := uint32(0)
	got = BudgetForEffort(EffortHigh, 0, 0, &explicit)
	if got < absoluteFloorBudget {
		t.Errorf("BudgetForEffort(unknown model, explicit override) = %d, want >= floor %d", got, absoluteFloorBudget)
	}
}
