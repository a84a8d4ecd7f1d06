// Package graph provides access to the Neo4j property graph.
//
// All query execution goes through the narrow Querier interface: a
// parameterized Cypher template plus a parameter map, returning flattened
// result rows. Property content is always passed as parameters; only
// validated identifiers may appear in query text.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/supplychain-graph/server/internal/config"
)

// Querier executes one parameterized Cypher statement and returns the
// result rows as maps keyed by the RETURN clause's column names.
// Satisfied by *Session.
type Querier interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Store wraps the Neo4j driver and hands out request-scoped sessions.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// New creates a Store and verifies connectivity before returning.
func New(ctx context.Context, cfg config.GraphConfig) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Store{
		driver:   driver,
		database: cfg.Database,
	}, nil
}

// Close releases the underlying driver and its connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Ping verifies the store is reachable. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// SessionHandle is a request-scoped resource: query execution plus an
// explicit release. Callers must Close it on every exit path.
type SessionHandle interface {
	Querier
	Close(ctx context.Context) error
}

// Session opens a request-scoped session. The caller owns the session and
// must Close it on every exit path.
func (s *Store) Session(ctx context.Context) SessionHandle {
	return &Session{
		inner: s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database}),
	}
}

// Session is a request-scoped handle to the graph store.
type Session struct {
	inner neo4j.SessionWithContext
}

// Run executes one Cypher statement and collects all result records.
func (s *Session) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := s.inner.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	for result.Next(ctx) {
		record := result.Record()
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = convertValue(record.Values[i])
		}
		rows = append(rows, row)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

// Close releases the session back to the driver's pool.
func (s *Session) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

// IsConnectivity reports whether err means the store is unreachable,
// as opposed to a rejected write. Connectivity failures abort a request;
// write rejections are recorded per row. The check unwraps, so errors
// annotated with fmt.Errorf %w are still classified correctly.
func IsConnectivity(err error) bool {
	var ce *neo4j.ConnectivityError
	return errors.As(err, &ce)
}

// convertValue converts Neo4j driver types to plain Go values.
func convertValue(val any) any {
	switch v := val.(type) {
	case neo4j.Node:
		return map[string]any{
			"id":         v.ElementId,
			"labels":     v.Labels,
			"properties": v.Props,
		}
	case neo4j.Relationship:
		return map[string]any{
			"id":         v.ElementId,
			"type":       v.Type,
			"properties": v.Props,
			"startNode":  v.StartElementId,
			"endNode":    v.EndElementId,
		}
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = convertValue(item)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, item := range v {
			result[k] = convertValue(item)
		}
		return result
	default:
		return v
	}
}
