package catalog

import "github.com/supplychain-graph/server/internal/graph"

// The fixed node types of the supply-chain graph model.
func init() {
	for _, e := range []struct {
		label  string
		plural string
	}{
		{"Product", "products"},
		{"Provider", "providers"},
		{"BranchOffice", "branch-offices"},
		{"Invoice", "invoices"},
		{"Route", "routes"},
		{"BuyOrder", "buy-orders"},
	} {
		Register(EntityDefinition{
			Label:       graph.MustIdentifier(e.label),
			Plural:      e.plural,
			KeyProperty: "ID",
		})
	}
}
