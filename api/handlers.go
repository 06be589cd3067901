package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"plusdb/dbkey"
	"plusdb/dberrors"
	"plusdb/service"
)

// Server holds the HTTP surface's dependencies: the underlying store and
// the metrics it reports against.
type Server struct {
	store   *service.Store
	metrics *Metrics
}

// NewServer builds a Server over an already-open store.
func NewServer(store *service.Store, metrics *Metrics) *Server {
	return &Server{store: store, metrics: metrics}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.metrics.RecordOperation("create_table", false, time.Since(start))
		sendError(w, "a non-empty table name is required", http.StatusBadRequest)
		return
	}

	err := s.store.CreateTable(req.Name)
	s.metrics.RecordOperation("create_table", err == nil, time.Since(start))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "table created"})
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	table := chi.URLParam(r, "table")

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordOperation("insert", false, time.Since(start))
		sendError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	key, err := dbkey.FromAny(req.Key)
	if err != nil {
		s.metrics.RecordOperation("insert", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.store.Insert(table, key, req.Value)
	s.metrics.RecordOperation("insert", err == nil, time.Since(start))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "record inserted"})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	table := chi.URLParam(r, "table")

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordOperation("update", false, time.Since(start))
		sendError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	key, err := dbkey.FromAny(req.Key)
	if err != nil {
		s.metrics.RecordOperation("update", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.store.Update(table, key, req.Value)
	s.metrics.RecordOperation("update", err == nil, time.Since(start))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "record updated"})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	table := chi.URLParam(r, "table")

	key, err := keyFromQuery(r)
	if err != nil {
		s.metrics.RecordOperation("read", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	value, err := s.store.Read(table, key)
	s.metrics.RecordOperation("read", err == nil, time.Since(start))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	sendSuccess(w, RecordResponse{Key: key.Raw(), Value: value})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	table := chi.URLParam(r, "table")

	key, err := keyFromQuery(r)
	if err != nil {
		s.metrics.RecordOperation("delete", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = s.store.Delete(table, key)
	s.metrics.RecordOperation("delete", err == nil, time.Since(start))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "record deleted"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	table := chi.URLParam(r, "table")

	entries, err := s.store.Scan(table)
	s.metrics.RecordOperation("scan", err == nil, time.Since(start))
	if err != nil {
		writeFacadeError(w, err)
		return
	}

	s.metrics.SetTableKeys(table, len(entries))
	out := make([]RecordResponse, len(entries))
	for i, e := range entries {
		out[i] = RecordResponse{Key: e.Key.Raw(), Value: e.Value}
	}
	sendSuccess(w, map[string]any{"records": out})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := s.store.Save()
	s.metrics.RecordOperation("save", err == nil, time.Since(start))
	if err != nil {
		writeFacadeError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "snapshot saved"})
}

// keyFromQuery parses the "key" query parameter as a JSON scalar, falling
// back to treating it as a plain string when it is not valid JSON (so
// ?key=42 and ?key=%22abc%22 both work as callers expect).
func keyFromQuery(r *http.Request) (dbkey.Key, error) {
	raw := r.URL.Query().Get("key")
	if raw == "" {
		return dbkey.Key{}, errors.New("key query parameter is required")
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return dbkey.String(raw), nil
	}
	return dbkey.FromAny(v)
}

// writeFacadeError maps a core error taxonomy value to its HTTP status.
func writeFacadeError(w http.ResponseWriter, err error) {
	switch dberrors.Kind(err) {
	case dberrors.ErrNoSuchTable, dberrors.ErrNoSuchKey:
		sendError(w, err.Error(), http.StatusNotFound)
	case dberrors.ErrAlreadyExists, dberrors.ErrDuplicateKey:
		sendError(w, err.Error(), http.StatusConflict)
	case dberrors.ErrInvalidValue, dberrors.ErrKeyKindMismatch:
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		sendError(w, err.Error(), http.StatusInternalServerError)
	}
}
