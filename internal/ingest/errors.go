package ingest

import "errors"

// ErrMalformedInput reports a file that cannot be decoded into rows.
// It is fatal for the whole request; no partial summary is produced.
var ErrMalformedInput = errors.New("malformed input")

// Reason is a machine-readable code attached to skipped and failed rows.
type Reason string

const (
	// ReasonBadRow marks a row missing one of its reserved columns.
	ReasonBadRow Reason = "bad_row"

	// ReasonInvalidIdentifier marks a label or relationship-type value
	// that fails the identifier grammar.
	ReasonInvalidIdentifier Reason = "invalid_identifier"

	// ReasonEndpointNotFound marks a relationship row referencing a node
	// that does not exist. No placeholder node is ever created for it.
	ReasonEndpointNotFound Reason = "endpoint_not_found"

	// ReasonStoreWrite marks an otherwise well-formed write the store
	// rejected.
	ReasonStoreWrite Reason = "store_write_failed"
)
