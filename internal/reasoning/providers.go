package reasoning

import (
	"strings"

	"github.com/routekeeper/gatewayproxy/internal/registry"
)

func translateAnthropic(intent Intent, model registry.ModelEntry) map[string]any {
	budget := BudgetForEffort(intent.Effort, model.MinTokens, model.MaxTokens, intent.BudgetTokens)
	return map[string]any{
		"thinking": map[string]any{
			"type":          "enabled",
			"budget_tokens": budget,
		},
	}
}

func translateOpenAIShape(intent Intent, _ registry.ModelEntry) map[string]any {
	effort := "medium"
	switch intent.Effort {
	case EffortMinimal:
		effort = "low"
	case EffortLow:
		effort = "low"
	case EffortMedium:
		effort = "medium"
	case EffortHigh:
		effort = "high"
	case EffortXHigh:
		effort = "high"
	case EffortAuto:
		effort = "medium"
	}
	out := map[string]any{"reasoningEffort": effort}
	if intent.IncludeThoughts {
		out["reasoningSummary"] = "auto"
	}
	return out
}

func translateGoogle(intent Intent, model registry.ModelEntry) map[string]any {
	var budget int
	if intent.Effort == EffortAuto && intent.BudgetTokens == nil {
		budget = -1
	} else {
		budget = BudgetForEffort(intent.Effort, model.MinTokens, model.MaxTokens, intent.BudgetTokens)
	}
	return map[string]any{
		"thinkingConfig": map[string]any{
			"thinkingBudget":  budget,
			"includeThoughts": intent.IncludeThoughts,
		},
	}
}

func translateXAI(intent Intent, _ registry.ModelEntry) map[string]any {
	effort := "low"
	if intent.Effort == EffortHigh || intent.Effort == EffortXHigh {
		effort = "high"
	}
	return map[string]any{"reasoningEffort": effort}
}

func translateDeepSeek(intent Intent, model registry.ModelEntry) map[string]any {
	if strings.Contains(strings.ToLower(model.ID), "r1") {
		return map[string]any{
			"thinking": map[string]any{"type": "enabled"},
		}
	}
	out := map[string]any{"enable_thinking": true}
	if intent.BudgetTokens != nil {
		out["thinking_budget"] = *intent.BudgetTokens
	}
	return out
}

func translateQwen(intent Intent, model registry.ModelEntry) map[string]any {
	budget := BudgetForEffort(intent.Effort, model.MinTokens, model.MaxTokens, intent.BudgetTokens)
	return map[string]any{
		"enable_thinking": true,
		"thinking_budget": budget,
	}
}

func translateOpenRouter(intent Intent, _ registry.ModelEntry) map[string]any {
	effort := "medium"
	switch intent.Effort {
	case EffortMinimal, EffortLow:
		effort = "low"
	case EffortHigh, EffortXHigh:
		effort = "high"
	case EffortMedium, EffortAuto:
		effort = "medium"
	}
	return map[string]any{
		"reasoning": map[string]any{"effort": effort},
	}
}
