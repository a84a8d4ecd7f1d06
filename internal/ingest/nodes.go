package ingest

import (
	"context"
	"fmt"

	"github.com/supplychain-graph/server/internal/graph"
)

// Reserved column names for node and relationship files.
const (
	colID        = "ID"
	colType      = "Type"
	colStartType = "Start_Node_Type"
	colStartID   = "Start_ID"
	colEndType   = "End_Node_Type"
	colEndID     = "End_ID"
	colRelation  = "Relation"
)

// NodeSpec describes one node to create: a validated label, the business
// key from the ID column, and the remaining columns as typed properties.
type NodeSpec struct {
	Label graph.Identifier
	Key   Value
	Props map[string]Value
}

// NodeSpecFromRow builds a NodeSpec from a row of a node file.
// The Type column supplies the label, the ID column the business key, and
// every other column becomes a property named after its header.
func NodeSpecFromRow(row RawRow) (NodeSpec, error) {
	rawLabel, ok := row[colType]
	if !ok {
		return NodeSpec{}, fmt.Errorf("missing reserved column %q", colType)
	}
	rawKey, ok := row[colID]
	if !ok {
		return NodeSpec{}, fmt.Errorf("missing reserved column %q", colID)
	}

	label, err := graph.NewIdentifier(rawLabel)
	if err != nil {
		return NodeSpec{}, err
	}

	props := make(map[string]Value, len(row)-2)
	for name, raw := range row {
		if name == colType || name == colID {
			continue
		}
		props[name] = Coerce(raw)
	}

	return NodeSpec{
		Label: label,
		Key:   Coerce(rawKey),
		Props: props,
	}, nil
}

// NodeResult reports a successfully created node.
type NodeResult struct {
	ElementID string
	Props     map[string]any
}

// ImportNode issues one node-creation operation. No existence check is
// performed first: every call creates a new node, even when one with the
// same label and business key already exists.
func ImportNode(ctx context.Context, q graph.Querier, spec NodeSpec) (NodeResult, error) {
	props := nativeProps(spec.Props)
	props[colID] = spec.Key.Native()

	cypher := fmt.Sprintf(
		"CREATE (n:%s $props) RETURN elementId(n) AS id, properties(n) AS props",
		spec.Label,
	)
	rows, err := q.Run(ctx, cypher, map[string]any{"props": props})
	if err != nil {
		return NodeResult{}, fmt.Errorf("creating %s node: %w", spec.Label, err)
	}
	if len(rows) == 0 {
		return NodeResult{}, fmt.Errorf("creating %s node: store returned no record", spec.Label)
	}

	result := NodeResult{Props: props}
	if id, ok := rows[0]["id"].(string); ok {
		result.ElementID = id
	}
	if realized, ok := rows[0]["props"].(map[string]any); ok {
		result.Props = realized
	}
	return result, nil
}
