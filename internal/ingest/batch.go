package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/supplychain-graph/server/internal/graph"
	"github.com/supplychain-graph/server/internal/logging"
)

// RowStatus is the per-row outcome within a batch.
type RowStatus string

const (
	RowCreated RowStatus = "created"
	RowSkipped RowStatus = "skipped"
	RowFailed  RowStatus = "failed"
)

// RowResult records one skipped or failed row.
type RowResult struct {
	Line   int       `json:"line"`
	Status RowStatus `json:"status"`
	Reason Reason    `json:"reason"`
	Detail string    `json:"detail"`
}

// Outcome is the per-file import summary, the only artifact returned
// across the system boundary for an ingestion request.
type Outcome struct {
	FileName string      `json:"fileName"`
	RowsRead int         `json:"rowsRead"`
	Created  int         `json:"created"`
	Skipped  int         `json:"skipped"`
	Failed   int         `json:"failed"`
	Rows     []RowResult `json:"rows,omitempty"`
}

// Message renders the user-facing summary line for the HTTP response.
func (o *Outcome) Message() string {
	return fmt.Sprintf("imported %d of %d rows from %s (%d skipped, %d failed)",
		o.Created, o.RowsRead, o.FileName, o.Skipped, o.Failed)
}

// RunImport drains the row sequence and realizes each row against the
// store. A file whose name contains "relations" is treated as a
// relationship file; any other file is a node file. Rows are processed
// strictly in file order, one at a time, because later relationship rows
// may depend on nodes created earlier in the same file.
//
// Row-level problems are swallowed into the outcome and never interrupt
// the batch. A malformed stream or an unreachable store aborts the whole
// request with an error and no partial summary.
func RunImport(ctx context.Context, q graph.Querier, fileName string, rows *RowReader) (*Outcome, error) {
	log := logging.WithFields(ctx, "file", fileName)
	isRelations := strings.Contains(fileName, "relations")

	out := &Outcome{FileName: fileName}
	for {
		row, line, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out.RowsRead++

		var result RowResult
		if isRelations {
			result, err = importRelationshipRow(ctx, q, row, line)
		} else {
			result, err = importNodeRow(ctx, q, row, line)
		}
		if err != nil {
			// Only connectivity loss escapes the row loop.
			return nil, err
		}

		switch result.Status {
		case RowCreated:
			out.Created++
		case RowSkipped:
			out.Skipped++
			out.Rows = append(out.Rows, result)
			log.Warn("row skipped", "line", result.Line, "reason", result.Reason, "detail", result.Detail)
		case RowFailed:
			out.Failed++
			out.Rows = append(out.Rows, result)
			log.Warn("row failed", "line", result.Line, "reason", result.Reason, "detail", result.Detail)
		}
	}

	log.Info("import finished",
		"rows_read", out.RowsRead,
		"created", out.Created,
		"skipped", out.Skipped,
		"failed", out.Failed,
	)
	return out, nil
}

// importNodeRow realizes one row of a node file.
func importNodeRow(ctx context.Context, q graph.Querier, row RawRow, line int) (RowResult, error) {
	spec, err := NodeSpecFromRow(row)
	if err != nil {
		return specFailure(line, err), nil
	}

	if _, err := ImportNode(ctx, q, spec); err != nil {
		if graph.IsConnectivity(err) {
			return RowResult{}, err
		}
		return RowResult{Line: line, Status: RowFailed, Reason: ReasonStoreWrite, Detail: err.Error()}, nil
	}

	return RowResult{Line: line, Status: RowCreated}, nil
}

// importRelationshipRow realizes one row of a relationship file.
func importRelationshipRow(ctx context.Context, q graph.Querier, row RawRow, line int) (RowResult, error) {
	spec, err := RelSpecFromRow(row)
	if err != nil {
		return specFailure(line, err), nil
	}

	result, err := ImportRelationship(ctx, q, spec)
	if err != nil {
		if graph.IsConnectivity(err) {
			return RowResult{}, err
		}
		return RowResult{Line: line, Status: RowFailed, Reason: ReasonStoreWrite, Detail: err.Error()}, nil
	}
	if !result.Realized {
		return RowResult{
			Line:   line,
			Status: RowSkipped,
			Reason: ReasonEndpointNotFound,
			Detail: fmt.Sprintf("%s{ID:%s} or %s{ID:%s} not found",
				spec.SourceLabel, spec.SourceKey, spec.TargetLabel, spec.TargetKey),
		}, nil
	}

	return RowResult{Line: line, Status: RowCreated}, nil
}

// specFailure classifies a spec-construction error as a row-level outcome.
func specFailure(line int, err error) RowResult {
	reason := ReasonBadRow
	if errors.Is(err, graph.ErrInvalidIdentifier) {
		reason = ReasonInvalidIdentifier
	}
	return RowResult{Line: line, Status: RowFailed, Reason: reason, Detail: err.Error()}
}
