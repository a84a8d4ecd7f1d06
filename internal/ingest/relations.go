package ingest

import (
	"context"
	"fmt"

	"github.com/supplychain-graph/server/internal/graph"
)

// RelSpec describes one relationship to realize: two endpoints located by
// label plus business key, a validated relationship type, and the remaining
// columns as typed edge properties.
type RelSpec struct {
	SourceLabel graph.Identifier
	SourceKey   Value
	TargetLabel graph.Identifier
	TargetKey   Value
	Type        graph.Identifier
	Props       map[string]Value
}

// RelSpecFromRow builds a RelSpec from a row of a relationship file.
func RelSpecFromRow(row RawRow) (RelSpec, error) {
	for _, name := range []string{colStartType, colStartID, colEndType, colEndID, colRelation} {
		if _, ok := row[name]; !ok {
			return RelSpec{}, fmt.Errorf("missing reserved column %q", name)
		}
	}

	sourceLabel, err := graph.NewIdentifier(row[colStartType])
	if err != nil {
		return RelSpec{}, err
	}
	targetLabel, err := graph.NewIdentifier(row[colEndType])
	if err != nil {
		return RelSpec{}, err
	}
	relType, err := graph.NewIdentifier(row[colRelation])
	if err != nil {
		return RelSpec{}, err
	}

	props := make(map[string]Value, len(row)-5)
	for name, raw := range row {
		switch name {
		case colStartType, colStartID, colEndType, colEndID, colRelation:
			continue
		}
		props[name] = Coerce(raw)
	}

	return RelSpec{
		SourceLabel: sourceLabel,
		SourceKey:   Coerce(row[colStartID]),
		TargetLabel: targetLabel,
		TargetKey:   Coerce(row[colEndID]),
		Type:        relType,
		Props:       props,
	}, nil
}

// RelResult reports the outcome of one relationship row.
type RelResult struct {
	// Realized is false when an endpoint was not found and the row was
	// skipped without creating anything.
	Realized bool
	SourceID string
	TargetID string
}

// ImportRelationship runs the two-phase relationship protocol.
//
// Phase 1 resolves each endpoint by label and business key. A lookup with
// zero matches skips the row; a placeholder node is never created. When a
// lookup matches more than one node, the candidate with the smallest
// element ID wins, which keeps the choice stable across store versions.
//
// Phase 2 merges exactly one edge of the given type between the resolved
// endpoints, refreshing its property set. Re-running the same row against
// an unchanged graph does not create a second parallel edge.
func ImportRelationship(ctx context.Context, q graph.Querier, spec RelSpec) (RelResult, error) {
	sourceID, found, err := resolveEndpoint(ctx, q, spec.SourceLabel, spec.SourceKey)
	if err != nil {
		return RelResult{}, err
	}
	if !found {
		return RelResult{}, nil
	}

	targetID, found, err := resolveEndpoint(ctx, q, spec.TargetLabel, spec.TargetKey)
	if err != nil {
		return RelResult{}, err
	}
	if !found {
		return RelResult{}, nil
	}

	cypher := fmt.Sprintf(`
		MATCH (a) WHERE elementId(a) = $source
		MATCH (b) WHERE elementId(b) = $target
		MERGE (a)-[r:%s]->(b)
		SET r = $props
		RETURN elementId(r) AS id`,
		spec.Type,
	)
	params := map[string]any{
		"source": sourceID,
		"target": targetID,
		"props":  nativeProps(spec.Props),
	}
	if _, err := q.Run(ctx, cypher, params); err != nil {
		return RelResult{}, fmt.Errorf("merging %s relationship: %w", spec.Type, err)
	}

	return RelResult{Realized: true, SourceID: sourceID, TargetID: targetID}, nil
}

// resolveEndpoint locates one endpoint node by label and business key.
func resolveEndpoint(ctx context.Context, q graph.Querier, label graph.Identifier, key Value) (string, bool, error) {
	cypher := fmt.Sprintf(
		"MATCH (n:%s {ID: $key}) RETURN elementId(n) AS id ORDER BY id ASC LIMIT 1",
		label,
	)
	rows, err := q.Run(ctx, cypher, map[string]any{"key": key.Native()})
	if err != nil {
		return "", false, fmt.Errorf("resolving %s endpoint: %w", label, err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	id, _ := rows[0]["id"].(string)
	return id, true, nil
}
