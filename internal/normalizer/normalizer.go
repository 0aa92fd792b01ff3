// Package normalizer rewrites a client-supplied chat-completions body into
// the upstream-shaped body the gateway expects: canonical model id, generic
// parameter names, and a resolved reasoning fragment under
// providerOptions.<provider>.
package normalizer

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/routekeeper/gatewayproxy/internal/reasoning"
	"github.com/routekeeper/gatewayproxy/internal/registry"
)

// Normalize consumes a raw client JSON body and returns the upstream-shaped
// body plus the detected provider tag. The returned bytes always contain
// model, messages, stream, and never customParameters.
func Normalize(body []byte, reg *registry.Registry) ([]byte, registry.ProviderTag, error) {
	root := gjson.ParseBytes(body)

	rawModel := root.Get("model").String()
	canonical := reg.Normalize(rawModel)
	provider := reg.DetectProvider(canonical)
	model, _ := reg.Lookup(canonical)

	out := []byte(`{}`)
	var err error

	if out, err = sjson.SetBytes(out, "model", canonical); err != nil {
		return nil, provider, err
	}
	if messages := root.Get("messages"); messages.Exists() {
		if out, err = sjson.SetRawBytes(out, "messages", []byte(messages.Raw)); err != nil {
			return nil, provider, err
		}
	} else {
		if out, err = sjson.SetBytes(out, "messages", []any{}); err != nil {
			return nil, provider, err
		}
	}

	stream := root.Get("stream").Bool()
	if out, err = sjson.SetBytes(out, "stream", stream); err != nil {
		return nil, provider, err
	}

	if t := root.Get("temperature"); t.Exists() {
		temp := t.Float()
		if provider == registry.ProviderAnthropic && temp > 1.0 {
			temp = 1.0
		}
		if out, err = sjson.SetBytes(out, "temperature", temp); err != nil {
			return nil, provider, err
		}
	}

	maxTokens := firstNonNull(root, "max_tokens", "maxTokens", "max_output_tokens", "maxOutputTokens")
	if maxTokens.Exists() {
		if out, err = sjson.SetBytes(out, "max_tokens", int(maxTokens.Int())); err != nil {
			return nil, provider, err
		}
	} else if model.DefaultTokens > 0 {
		if out, err = sjson.SetBytes(out, "max_tokens", model.DefaultTokens); err != nil {
			return nil, provider, err
		}
	}

	if out, err = applyScalarPassthroughs(out, root); err != nil {
		return nil, provider, err
	}

	if out, err = applyCustomParameters(out, root); err != nil {
		return nil, provider, err
	}

	intent := parseReasoningIntent(root, provider)
	fragment := reasoning.Translate(provider, intent, model)
	if len(fragment) > 0 {
		for key, value := range fragment {
			path := "providerOptions." + string(provider) + "." + key
			if out, err = sjson.SetBytes(out, path, value); err != nil {
				return nil, provider, err
			}
		}
	}

	out, err = sjson.DeleteBytes(out, "customParameters")
	if err != nil {
		return nil, provider, err
	}

	return out, provider, nil
}

// firstNonNull returns the first existing, non-null result among keys.
func firstNonNull(root gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := root.Get(key); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

type passthrough struct {
	snake string
	camel string
}

var scalarFields = []passthrough{
	{snake: "top_p", camel: "topP"},
	{snake: "top_k", camel: "topK"},
	{snake: "frequency_penalty", camel: "frequencyPenalty"},
	{snake: "presence_penalty", camel: "presencePenalty"},
	{snake: "seed", camel: "seed"},
}

func applyScalarPassthroughs(out []byte, root gjson.Result) ([]byte, error) {
	var err error
	for _, field := range scalarFields {
		v := firstNonNull(root, field.snake, field.camel)
		if !v.Exists() {
			continue
		}
		if out, err = sjson.SetBytes(out, field.snake, v.Value()); err != nil {
			return out, err
		}
	}

	if stop := firstNonNull(root, "stop"); stop.Exists() {
		if stop.IsArray() {
			out, err = sjson.SetRawBytes(out, "stop", []byte(stop.Raw))
		} else {
			out, err = sjson.SetBytes(out, "stop", []any{stop.Value()})
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// applyCustomParameters flattens the customParameters array of
// {name,value,type} entries onto the top-level body, coercing by type and
// dropping anonymous (blank-name) entries.
func applyCustomParameters(out []byte, root gjson.Result) ([]byte, error) {
	params := root.Get("customParameters")
	if !params.IsArray() {
		return out, nil
	}

	var err error
	params.ForEach(func(_, entry gjson.Result) bool {
		name := strings.TrimSpace(entry.Get("name").String())
		if name == "" {
			return true
		}
		typ := entry.Get("type").String()
		raw := entry.Get("value")

		var value any
		var skip bool
		switch typ {
		case "number":
			f := raw.Float()
			if f == float64(int64(f)) {
				value = int64(f)
			} else {
				value = f
			}
		case "boolean":
			value = raw.String() == "true" || raw.Bool()
		case "json":
			text := raw.String()
			if text == "undefined" {
				skip = true
				break
			}
			parsed := gjson.Parse(text)
			if !parsed.Exists() {
				skip = true
				break
			}
			value = parsed.Value()
		default:
			value = raw.Value()
		}
		if skip {
			return true
		}
		out, err = sjson.SetBytes(out, name, value)
		return err == nil
	})
	return out, err
}

// parseReasoningIntent extracts a reasoning.Intent from any of the several
// input shapes a client may send.
func parseReasoningIntent(root gjson.Result, provider registry.ProviderTag) reasoning.Intent {
	intent := reasoning.Intent{IncludeThoughts: true}

	if po := root.Get("providerOptions." + string(provider)); po.Exists() {
		if effort := po.Get("reasoningEffort"); effort.Exists() {
			intent.Enabled = true
			intent.Effort = reasoning.Effort(effort.String())
		}
		if tc := po.Get("thinkingConfig"); tc.Exists() {
			intent.Enabled = true
			if budget := tc.Get("thinkingBudget"); budget.Exists() && budget.Int() > 0 {
				b := uint32(budget.Int())
				intent.BudgetTokens = &b
			}
			if include := tc.Get("includeThoughts"); include.Exists() {
				intent.IncludeThoughts = include.Bool()
			}
		}
		if th := po.Get("thinking"); th.Exists() {
			intent.Enabled = true
			if budget := th.Get("budget_tokens"); budget.Exists() {
				b := uint32(budget.Int())
				intent.BudgetTokens = &b
			}
		}
	}

	if effort := root.Get("reasoning_effort"); effort.Exists() {
		intent.Enabled = true
		intent.Effort = reasoning.Effort(strings.ToLower(effort.String()))
	}

	if enable := root.Get("enable_thinking"); enable.Exists() {
		intent.Enabled = enable.Bool()
	}

	if th := root.Get("thinking"); th.Exists() {
		switch th.Type {
		case gjson.True, gjson.False:
			intent.Enabled = intent.Enabled || th.Bool()
		default:
			intent.Enabled = true
			if budget := th.Get("budget_tokens"); budget.Exists() {
				b := uint32(budget.Int())
				intent.BudgetTokens = &b
			}
			if it := th.Get("include_thoughts"); it.Exists() {
				intent.IncludeThoughts = it.Bool()
			}
		}
	}

	if budget := root.Get("thinking_budget"); budget.Exists() {
		intent.Enabled = true
		b := uint32(budget.Int())
		intent.BudgetTokens = &b
	}

	if intent.Effort == "" {
		intent.Effort = reasoning.EffortAuto
	}

	return intent
}
