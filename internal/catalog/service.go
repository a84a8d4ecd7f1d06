package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/supplychain-graph/server/internal/graph"
	"github.com/supplychain-graph/server/internal/ingest"
)

// ErrNotFound reports that no node matched the requested business key.
var ErrNotFound = errors.New("entity not found")

// Record is one node rendered for API responses: the store-assigned
// element ID plus the node's property map.
type Record struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

// List returns all nodes of the entity's label in element-ID order.
func List(ctx context.Context, q graph.Querier, def EntityDefinition) ([]Record, error) {
	cypher := fmt.Sprintf(
		"MATCH (n:%s) RETURN elementId(n) AS id, properties(n) AS props ORDER BY id ASC",
		def.Label,
	)
	rows, err := q.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", def.Label, err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return records, nil
}

// GetByKey returns the node with the given business key.
// When more than one node carries the key, the smallest element ID wins.
func GetByKey(ctx context.Context, q graph.Querier, def EntityDefinition, rawKey string) (Record, error) {
	cypher := fmt.Sprintf(
		"MATCH (n:%s {%s: $key}) RETURN elementId(n) AS id, properties(n) AS props ORDER BY id ASC LIMIT 1",
		def.Label, def.KeyProperty,
	)
	rows, err := q.Run(ctx, cypher, map[string]any{"key": ingest.Coerce(rawKey).Native()})
	if err != nil {
		return Record{}, fmt.Errorf("fetching %s: %w", def.Label, err)
	}
	if len(rows) == 0 {
		return Record{}, fmt.Errorf("%s %q: %w", def.Label, rawKey, ErrNotFound)
	}
	return toRecord(rows[0]), nil
}

// Create adds one node with the given property map. Property names must
// satisfy the identifier grammar; values pass through as parameters.
func Create(ctx context.Context, q graph.Querier, def EntityDefinition, props map[string]any) (Record, error) {
	if err := validatePropertyNames(props); err != nil {
		return Record{}, err
	}

	cypher := fmt.Sprintf(
		"CREATE (n:%s $props) RETURN elementId(n) AS id, properties(n) AS props",
		def.Label,
	)
	rows, err := q.Run(ctx, cypher, map[string]any{"props": props})
	if err != nil {
		return Record{}, fmt.Errorf("creating %s: %w", def.Label, err)
	}
	if len(rows) == 0 {
		return Record{}, fmt.Errorf("creating %s: store returned no record", def.Label)
	}
	return toRecord(rows[0]), nil
}

// Update merges the given properties into the node with the business key.
func Update(ctx context.Context, q graph.Querier, def EntityDefinition, rawKey string, props map[string]any) (Record, error) {
	if err := validatePropertyNames(props); err != nil {
		return Record{}, err
	}

	cypher := fmt.Sprintf(
		"MATCH (n:%s {%s: $key}) SET n += $props RETURN elementId(n) AS id, properties(n) AS props",
		def.Label, def.KeyProperty,
	)
	params := map[string]any{
		"key":   ingest.Coerce(rawKey).Native(),
		"props": props,
	}
	rows, err := q.Run(ctx, cypher, params)
	if err != nil {
		return Record{}, fmt.Errorf("updating %s: %w", def.Label, err)
	}
	if len(rows) == 0 {
		return Record{}, fmt.Errorf("%s %q: %w", def.Label, rawKey, ErrNotFound)
	}
	return toRecord(rows[0]), nil
}

// Delete removes the node with the business key and all its relationships.
func Delete(ctx context.Context, q graph.Querier, def EntityDefinition, rawKey string) error {
	record, err := GetByKey(ctx, q, def, rawKey)
	if err != nil {
		return err
	}

	cypher := "MATCH (n) WHERE elementId(n) = $id DETACH DELETE n"
	if _, err := q.Run(ctx, cypher, map[string]any{"id": record.ID}); err != nil {
		return fmt.Errorf("deleting %s: %w", def.Label, err)
	}
	return nil
}

// Counts returns the node count per registered entity label.
func Counts(ctx context.Context, q graph.Querier) (map[string]int64, error) {
	counts := make(map[string]int64, Count())
	for _, def := range All() {
		cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS total", def.Label)
		rows, err := q.Run(ctx, cypher, nil)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", def.Label, err)
		}
		if len(rows) > 0 {
			if total, ok := rows[0]["total"].(int64); ok {
				counts[def.Label.String()] = total
			}
		}
	}
	return counts, nil
}

// TopProducts returns the products contained in the most invoices.
func TopProducts(ctx context.Context, q graph.Querier, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 10
	}
	cypher := `
		MATCH (i:Invoice)-[r:CONTAINS]->(p:Product)
		RETURN p.ID AS id, p.Name AS name, count(r) AS invoices
		ORDER BY invoices DESC, id ASC
		LIMIT $limit`
	rows, err := q.Run(ctx, cypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("ranking products: %w", err)
	}
	return rows, nil
}

// ResetAll deletes every node and relationship in the graph.
// This is a destructive operation - use with caution.
func ResetAll(ctx context.Context, q graph.Querier) error {
	if _, err := q.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return fmt.Errorf("resetting graph: %w", err)
	}
	return nil
}

// validatePropertyNames rejects property maps whose keys fail the
// identifier grammar. Values are parameterized and need no validation.
func validatePropertyNames(props map[string]any) error {
	for name := range props {
		if _, err := graph.NewIdentifier(name); err != nil {
			return fmt.Errorf("property %q: %w", name, graph.ErrInvalidIdentifier)
		}
	}
	return nil
}

// toRecord converts one result row into a Record.
func toRecord(row map[string]any) Record {
	record := Record{Properties: map[string]any{}}
	if id, ok := row["id"].(string); ok {
		record.ID = id
	}
	if props, ok := row["props"].(map[string]any); ok {
		record.Properties = props
	}
	return record
}
