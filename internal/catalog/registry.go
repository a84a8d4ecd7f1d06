// Package catalog provides CRUD and analytical operations over the fixed
// set of graph entities. It has no HTTP dependencies and can be used by
// any frontend.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/supplychain-graph/server/internal/graph"
)

// EntityDefinition describes one node type exposed over the API.
type EntityDefinition struct {
	// Label is the validated graph label, e.g. Product.
	Label graph.Identifier

	// Plural is the URL path segment, e.g. "products".
	Plural string

	// KeyProperty is the business-key property used to address a single
	// node. Always "ID" in the current model.
	KeyProperty string
}

var (
	registry   = make(map[string]EntityDefinition)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if an entity with the same plural is already registered.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Plural]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Plural))
	}
	if def.KeyProperty == "" {
		def.KeyProperty = "ID"
	}

	registry[def.Plural] = def
}

// Get returns an entity definition by its plural path segment.
// Returns false if not found.
func Get(plural string) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[plural]
	return def, ok
}

// All returns all registered entity definitions, sorted by label for
// consistent ordering.
func All() []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Label.String() < result[j].Label.String()
	})

	return result
}

// Count returns the number of registered entities.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
