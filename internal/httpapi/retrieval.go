package httpapi

import (
	"net/http"

	"github.com/Aman-CERP/codevector/internal/retrieval"
)

type retrievalRequest struct {
	RepoID  string   `json:"repo_id"`
	FileIDs []string `json:"file_ids,omitempty"`
	Query   string   `json:"query"`
	TopK    int      `json:"top_k,omitempty"`
}

func (s *Server) handleRetrieval(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req retrievalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	metas, err := s.retriever.Search(r.Context(), retrieval.Request{
		RepoID:  req.RepoID,
		FileIDs: req.FileIDs,
		Query:   req.Query,
		TopK:    req.TopK,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeOK(w, metas)
}
