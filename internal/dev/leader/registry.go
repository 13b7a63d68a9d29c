package leader

import (
	"time"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/pkg/cmap"
)

type entry struct {
	def      domain.SubgraphDefinition
	revision uint64
	updated  time.Time
}

// Registry holds the subgraphs contributed to the session, keyed by name.
type Registry struct {
	m *cmap.Map[domain.SubgraphName, entry]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: cmap.New[domain.SubgraphName, entry]()}
}

// Upsert stores def, replacing any subgraph with the same name.
// It returns the revision of the stored definition, starting at 1.
func (r *Registry) Upsert(def domain.SubgraphDefinition) uint64 {
	e := r.m.Update(def.Name, func(prev entry, exists bool) entry {
		next := entry{def: def, revision: 1, updated: time.Now()}
		if exists {
			next.revision = prev.revision + 1
		}
		return next
	})
	return e.revision
}

// Remove deletes the named subgraph and reports whether it existed.
func (r *Registry) Remove(name domain.SubgraphName) bool {
	_, ok := r.m.Pop(name)
	return ok
}

// Get returns the stored definition for name.
func (r *Registry) Get(name domain.SubgraphName) (domain.SubgraphDefinition, bool) {
	e, ok := r.m.Get(name)
	return e.def, ok
}

// Keys returns the membership sorted by name.
func (r *Registry) Keys() domain.SubgraphKeys {
	keys := make(domain.SubgraphKeys, 0, r.m.Count())
	r.m.Range(func(_ domain.SubgraphName, e entry) bool {
		keys = append(keys, e.def.Key())
		return true
	})
	return keys.Sorted()
}

// SubgraphCount returns the number of registered subgraphs.
func (r *Registry) SubgraphCount() int {
	return r.m.Count()
}
