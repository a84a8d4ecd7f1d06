package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/supplychain-graph/server/internal/catalog"
	"github.com/supplychain-graph/server/internal/graph"
)

// entityDef resolves the {entity} path segment against the registry.
// Writes a 404 and returns false when the segment is unknown.
func (s *Server) entityDef(w http.ResponseWriter, r *http.Request) (catalog.EntityDefinition, bool) {
	plural := chi.URLParam(r, "entity")
	def, ok := catalog.Get(plural)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown entity: "+plural)
		return catalog.EntityDefinition{}, false
	}
	return def, true
}

// handleListEntities returns all nodes of one entity type.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	def, ok := s.entityDef(w, r)
	if !ok {
		return
	}

	session := s.store.Session(r.Context())
	defer session.Close(r.Context())

	records, err := catalog.List(r.Context(), session, def)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, records)
}

// handleGetEntity returns one node by business key.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	def, ok := s.entityDef(w, r)
	if !ok {
		return
	}

	session := s.store.Session(r.Context())
	defer session.Close(r.Context())

	record, err := catalog.GetByKey(r.Context(), session, def, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, record)
}

// handleCreateEntity creates one node from a JSON property map.
func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	def, ok := s.entityDef(w, r)
	if !ok {
		return
	}

	props, ok := decodeProps(w, r)
	if !ok {
		return
	}

	session := s.store.Session(r.Context())
	defer session.Close(r.Context())

	record, err := catalog.Create(r.Context(), session, def, props)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusCreated, record)
}

// handleUpdateEntity merges a JSON property map into one node.
func (s *Server) handleUpdateEntity(w http.ResponseWriter, r *http.Request) {
	def, ok := s.entityDef(w, r)
	if !ok {
		return
	}

	props, ok := decodeProps(w, r)
	if !ok {
		return
	}

	session := s.store.Session(r.Context())
	defer session.Close(r.Context())

	record, err := catalog.Update(r.Context(), session, def, chi.URLParam(r, "key"), props)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, record)
}

// handleDeleteEntity removes one node and its relationships.
func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	def, ok := s.entityDef(w, r)
	if !ok {
		return
	}

	session := s.store.Session(r.Context())
	defer session.Close(r.Context())

	if err := catalog.Delete(r.Context(), session, def, chi.URLParam(r, "key")); err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeProps reads the request body as a JSON property map.
// Writes a 400 and returns false when the body is not a JSON object.
func decodeProps(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var props map[string]any
	if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return props, true
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrInvalidIdentifier):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
