// Package httpapi is the HTTP façade over the indexing/retrieval pipeline:
// a plain net/http.ServeMux wrapping the seven routes of spec.md §6 in the
// uniform {code, message, data, success} envelope.
//
// Grounded on seanblong-reposearch's cmd/api/main.go, which wires its own
// /search and /repositories routes directly onto http.NewServeMux with no
// framework; codevector keeps that style and adds the envelope spec.md
// requires.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Aman-CERP/codevector/internal/cverrors"
	"github.com/Aman-CERP/codevector/internal/indexer"
	"github.com/Aman-CERP/codevector/internal/retrieval"
)

// envelope is the uniform response shape every route returns.
type envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
}

// Server is the httpapi façade, bound to one Indexer/Retriever pair.
type Server struct {
	indexer   *indexer.Indexer
	retriever *retrieval.Retriever
	logger    *slog.Logger
}

// New builds a Server.
func New(idx *indexer.Indexer, ret *retrieval.Retriever, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{indexer: idx, retriever: ret, logger: logger}
}

// Handler returns the full route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/vector/upsert_index", s.handleUpsertIndex)
	mux.HandleFunc("/vector/upsert_index_by_file", s.handleUpsertIndexByFile)
	mux.HandleFunc("/vector/drop_index", s.handleDropIndex)
	mux.HandleFunc("/vector/delete_index", s.handleDeleteIndex)
	mux.HandleFunc("/vector/all_index", s.handleAllIndex)
	mux.HandleFunc("/vector/retrieval", s.handleRetrieval)
	mux.HandleFunc("/git/clone_and_index", s.handleCloneAndIndex)
	return withAccessLog(s.logger, mux)
}

func withAccessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("http request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Code: 200, Message: "ok", Data: data, Success: true})
}

// writeError maps a CVError's category onto an HTTP status and reports it
// in the envelope; non-CVError errors fall back to 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch cverrors.GetCategory(err) {
	case cverrors.CategoryValidation, cverrors.CategoryDecode, cverrors.CategoryParseInvalid, cverrors.CategoryUnsupportedExtension:
		status = http.StatusBadRequest
	case cverrors.CategoryConfig:
		status = http.StatusInternalServerError
	case cverrors.CategoryGit:
		status = http.StatusBadGateway
	case cverrors.CategoryEmbeddingProvider, cverrors.CategoryVectorStore:
		status = http.StatusBadGateway
	}

	logger.Error("request failed", "error", err, "status", status)
	writeJSON(w, status, envelope{Code: -status, Message: message, Success: false})
}

// decodeJSON reads and decodes a JSON body, reporting a validation error on
// malformed input.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return cverrors.Validation("malformed JSON body: " + err.Error())
	}
	return nil
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Code: -http.StatusMethodNotAllowed, Message: "method not allowed", Success: false})
		return false
	}
	return true
}
