package registry

import "testing"

func TestNormalize_AliasClosure(t *testing.T) {
	t.Parallel()
	r := New()

	for alias, want := range aliases {
		got := r.Normalize(alias)
		if got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", alias, got, want)
		}
	}
}

func TestNormalize_AlreadyCanonical(t *testing.T) {
	t.Parallel()
	r := New()

	const id = "anthropic/claude-sonnet-4-20250514"
	if got := r.Normalize(id); got != id {
		t.Fatalf("Normalize(%q) = %q, want unchanged", id, got)
	}
}

func TestNormalize_PrefixInference(t *testing.T) {
	t.Parallel()
	r := New()

	tests := []struct {
		in   string
		want string
	}{
		{"claude-sonnet-4", "anthropic/claude-sonnet-4-20250514"},
		{"gpt-4o", "openai/gpt-4o"},
		{"gemini-2.5-pro", "google/gemini-2.5-pro"},
		{"grok-4", "xai/grok-4"},
		{"deepseek-r1", "deepseek/deepseek-r1"},
		// Not aliases: these resolve through the provider-prefix step.
		{"claude-3-5-haiku-20241022", "anthropic/claude-3-5-haiku-20241022"},
		{"claude-opus-4-20250514", "anthropic/claude-opus-4-20250514"},
	}
	for _, tt := range tests {
		if got := r.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Unknown(t *testing.T) {
	t.Parallel()
	r := New()

	const id = "totally-unknown-model"
	if got := r.Normalize(id); got != id {
		t.Fatalf("Normalize(%q) = %q, want unchanged", id, got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()
	r := New()

	inputs := []string{"claude-sonnet-4", "gpt-4o", "anthropic/claude-opus-4-20250514", "unknown-id"}
	for _, in := range inputs {
		once := r.Normalize(in)
		twice := r.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestDetectProvider(t *testing.T) {
	t.Parallel()
	r := New()

	tests := []struct {
		in   string
		want ProviderTag
	}{
		{"anthropic/claude-sonnet-4-20250514", ProviderAnthropic},
		{"claude-sonnet-4", ProviderAnthropic},
		{"gpt-4o", ProviderOpenAI},
		{"gemini-2.5-pro", ProviderGoogle},
		{"mystery-model", ProviderUnknown},
	}
	for _, tt := range tests {
		if got := r.DetectProvider(tt.in); got != tt.want {
			t.Errorf("DetectProvider(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestList_FilterByProvider(t *testing.T) {
	t.Parallel()
	r := New()

	anthropic := ProviderAnthropic
	entries := r.List(&anthropic)
	if len(entries) == 0 {
		t.Fatalf("List(anthropic) returned no entries")
	}
	for _, entry := range entries {
		if entry.Provider != ProviderAnthropic {
			t.Errorf("List(anthropic) returned provider %q", entry.Provider)
		}
	}

	all := r.List(nil)
	if len(all) != len(catalog) {
		t.Errorf("List(nil) = %d entries, want %d", len(all), len(catalog))
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()
	r := New()

	entry, ok := r.Lookup("claude-sonnet-4")
	if !ok {
		t.Fatalf("Lookup(claude-sonnet-4) not found")
	}
	if entry.ID != "anthropic/claude-sonnet-4-20250514" {
		t.Errorf("Lookup(claude-sonnet-4).ID = %q", entry.ID)
	}

	if _, ok := r.Lookup("nonexistent-model-xyz"); ok {
		t.Errorf("Lookup(nonexistent-model-xyz) unexpectedly found")
	}
}
