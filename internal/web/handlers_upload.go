package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/supplychain-graph/server/internal/audit"
	"github.com/supplychain-graph/server/internal/ingest"
	"github.com/supplychain-graph/server/internal/logging"
)

// uploadResponse is the body returned for a completed ingestion request.
type uploadResponse struct {
	Message string `json:"message"`
}

// handleUploadCSV ingests one tabular file into the graph.
//
// The store session is scoped to this request: acquired before the first
// row, released on every exit path. Row-level problems land in the import
// summary; a malformed stream or unreachable store aborts with a 500.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file attached")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	rows, err := ingest.NewRowReader(file)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	session := s.store.Session(ctx)
	defer session.Close(ctx)

	started := time.Now()
	outcome, err := ingest.RunImport(ctx, session, header.Filename, rows)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	run := audit.Run{
		ID:        uuid.New(),
		FileName:  outcome.FileName,
		RowsRead:  outcome.RowsRead,
		Created:   outcome.Created,
		Skipped:   outcome.Skipped,
		Failed:    outcome.Failed,
		Duration:  time.Since(started),
		StartedAt: started,
	}
	if err := s.audit.Record(ctx, run); err != nil {
		// The graph writes already landed; a ledger miss is not worth a 500.
		logging.FromContext(ctx).Error("failed to record import run", "error", err)
	}

	writeJSON(w, r, http.StatusOK, uploadResponse{Message: outcome.Message()})
}

// handleImportHistory returns the most recent import runs from the ledger.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []audit.Run{}
	}

	writeJSON(w, r, http.StatusOK, runs)
}
