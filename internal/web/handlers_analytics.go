package web

import (
	"net/http"
	"strconv"

	"github.com/supplychain-graph/server/internal/catalog"
	"github.com/supplychain-graph/server/internal/logging"
)

// handleCounts returns the node count per entity label.
func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	session := s.store.Session(r.Context())
	defer session.Close(r.Context())

	counts, err := catalog.Counts(r.Context(), session)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, counts)
}

// handleTopProducts returns the products contained in the most invoices.
func (s *Server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	session := s.store.Session(r.Context())
	defer session.Close(r.Context())

	rows, err := catalog.TopProducts(r.Context(), session, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []map[string]any{}
	}

	writeJSON(w, r, http.StatusOK, rows)
}

// handleReset deletes every node and relationship in the graph.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session := s.store.Session(r.Context())
	defer session.Close(r.Context())

	if err := catalog.ResetAll(r.Context(), session); err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	logging.FromContext(r.Context()).Warn("graph reset completed")
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "reset"})
}

// handleHealth probes store connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "graph store unreachable")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
