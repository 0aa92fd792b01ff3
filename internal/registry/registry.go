package registry

import (
	"strings"
	"sync"
)

// Registry is the immutable-at-runtime model catalog. It is built once at
// startup from the static catalog table and is safe for concurrent reads.
type Registry struct {
	byID    map[string]ModelEntry
	aliases map[string]string
	// ordered preserves catalog declaration order for List().
	ordered []string
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry, building it on first use.
func Global() *Registry {
	globalOnce.Do(func() {
		global = New()
	})
	return global
}

// New builds a Registry from the static catalog and alias tables.
func New() *Registry {
	r := &Registry{
		byID:    make(map[string]ModelEntry, len(catalog)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, entry := range catalog {
		r.byID[entry.ID] = entry
		r.ordered = append(r.ordered, entry.ID)
	}
	for alias, target := range aliases {
		r.aliases[strings.ToLower(alias)] = target
	}
	return r
}

// Lookup returns the canonical entry for id, resolving aliases first.
func (r *Registry) Lookup(id string) (ModelEntry, bool) {
	canonical := r.Normalize(id)
	entry, ok := r.byID[canonical]
	return entry, ok
}

// Normalize resolves a client-supplied model id to its canonical form,
// following the algorithm in order; the first matching step wins.
func (r *Registry) Normalize(id string) string {
	if id == "" {
		return id
	}
	lower := strings.ToLower(id)

	// 1. known alias
	if target, ok := r.aliases[lower]; ok {
		return target
	}

	// 2. already canonical
	if _, ok := r.byID[id]; ok {
		return id
	}

	// 3. infer provider from prefix when id has no explicit provider segment
	if !strings.Contains(id, "/") {
		if provider, ok := prefixToProvider(id); ok {
			candidate := string(provider) + "/" + id
			if _, ok := r.byID[candidate]; ok {
				return candidate
			}
		}
	}

	// 4. substring scan: suffix match or containment against canonical ids
	for _, canonical := range r.ordered {
		if strings.HasSuffix(canonical, "/"+id) || strings.Contains(canonical, id) {
			return canonical
		}
	}

	// 5. unchanged
	return id
}

// DetectProvider identifies the provider family for a model id: explicit
// "provider/name" prefix wins, otherwise the same prefix-family check used
// by Normalize step 3, otherwise unknown.
func (r *Registry) DetectProvider(id string) ProviderTag {
	if id == "" {
		return ProviderUnknown
	}
	if idx := strings.Index(id, "/"); idx > 0 {
		return ProviderTag(strings.ToLower(id[:idx]))
	}
	if provider, ok := prefixToProvider(id); ok {
		return provider
	}
	return ProviderUnknown
}

// List returns catalog entries, optionally filtered by provider.
func (r *Registry) List(filter *ProviderTag) []ModelEntry {
	out := make([]ModelEntry, 0, len(r.ordered))
	for _, id := range r.ordered {
		entry := r.byID[id]
		if filter != nil && entry.Provider != *filter {
			continue
		}
		out = append(out, entry)
	}
	return out
}
