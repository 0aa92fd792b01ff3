// Package reasoning translates a provider-agnostic reasoning intent into the
// provider-specific JSON parameter fragment the upstream gateway expects.
package reasoning

import "github.com/routekeeper/gatewayproxy/internal/registry"

// Effort is the closed set of reasoning effort levels a client can request.
type Effort string

const (
	EffortMinimal Effort = "minimal"
	EffortLow     Effort = "low"
	EffortMedium  Effort = "medium"
	EffortHigh    Effort = "high"
	EffortXHigh   Effort = "xhigh"
	EffortAuto    Effort = "auto"
)

// effortRatio maps an effort level to the fraction of the budget range it
// should consume when converting effort to a token budget.
var effortRatio = map[Effort]float64{
	EffortMinimal: 0.1,
	EffortLow:     0.25,
	EffortMedium:  0.5,
	EffortHigh:    0.75,
	EffortXHigh:   1.0,
	EffortAuto:    0.5,
}

// Intent is the normalized, provider-agnostic representation of a client's
// reasoning/thinking request.
type Intent struct {
	Enabled         bool
	Effort          Effort
	BudgetTokens    *uint32
	IncludeThoughts bool
}

const absoluteFloorBudget = 1024

// BudgetForEffort computes the token budget for an effort level against a
// model's [min, max] output-token range, honoring an explicit override.
func BudgetForEffort(effort Effort, min, max int, explicit *uint32) int {
	if explicit != nil {
		return clampInt(int(*explicit), absoluteFloorBudget, max)
	}
	ratio, ok := effortRatio[effort]
	if !ok {
		ratio = effortRatio[EffortAuto]
	}
	computed := int(roundFloat(float64(max-min)*ratio + float64(min)))
	return clampInt(computed, absoluteFloorBudget, max)
}

// clampInt clamps v to [min, max]. min is treated as a hard floor: an
// unknown model (max == 0) never pulls the result below it.
func clampInt(v, min, max int) int {
	if max < min {
		max = min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func roundFloat(v float64) float64 {
	if v < 0 {
		return float64(int64(v - 0.5))
	}
	return float64(int64(v + 0.5))
}

// Translate returns the upstream-shaped fragment for the given provider and
// intent, relative to the resolved model entry (used for its token range).
// When intent.Enabled is false, it returns an empty map.
func Translate(provider registry.ProviderTag, intent Intent, model registry.ModelEntry) map[string]any {
	if !intent.Enabled {
		return map[string]any{}
	}
	translator, ok := translators[provider]
	if !ok {
		translator = translateOpenAIShape
	}
	return translator(intent, model)
}

type translateFunc func(intent Intent, model registry.ModelEntry) map[string]any

var translators = map[registry.ProviderTag]translateFunc{
	registry.ProviderAnthropic:  translateAnthropic,
	registry.ProviderOpenAI:     translateOpenAIShape,
	registry.ProviderGoogle:     translateGoogle,
	registry.ProviderXAI:        translateXAI,
	registry.ProviderDeepSeek:   translateDeepSeek,
	registry.ProviderQwen:       translateQwen,
	registry.ProviderOpenRouter: translateOpenRouter,
}
