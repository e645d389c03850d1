package action

import (
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/mapping"
)

// TableSource provides the active mapping table.
// *mapping.Store satisfies it.
type TableSource interface {
	Load() *mapping.Table
}

// Resolver merges base actions with payload overrides.
type Resolver struct {
	source TableSource
}

// NewResolver creates a resolver reading mappings from source.
func NewResolver(source TableSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the final actions for a publish on topic, in configured
// order. An unmapped topic yields nil. The payload is only parsed when the
// topic is mapped.
func (r *Resolver) Resolve(topic, payload string) []mapping.Action {
	table := r.source.Load()
	if table == nil {
		return nil
	}
	base, ok := table.Actions(topic)
	if !ok || len(base) == 0 {
		return nil
	}

	override := ParseOverride(payload)
	final := make([]mapping.Action, len(base))
	for i, a := range base {
		final[i] = override.Apply(a)
	}
	return final
}
