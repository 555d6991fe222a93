package httpapi

import (
	"net/http"

	"github.com/Aman-CERP/codevector/internal/indexer"
)

type cloneAndIndexRequest struct {
	UID         string `json:"uid,omitempty"`
	RepoURL     string `json:"repo_url"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

type cloneAndIndexResponse struct {
	RepoID    string `json:"repo_id"`
	FileCount int    `json:"file_count"`
}

func (s *Server) handleCloneAndIndex(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req cloneAndIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	repoID, count, err := s.indexer.CloneAndIndex(r.Context(), indexer.GitCloneRequest{
		UID:         req.UID,
		RepoURL:     req.RepoURL,
		Username:    req.Username,
		Password:    req.Password,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeOK(w, cloneAndIndexResponse{RepoID: repoID, FileCount: count})
}
