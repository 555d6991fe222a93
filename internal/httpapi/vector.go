package httpapi

import (
	"io"
	"net/http"

	"github.com/Aman-CERP/codevector/internal/cverrors"
	"github.com/Aman-CERP/codevector/internal/indexer"
)

// upsertIndexFileInfo is one entry of the upsert_index request body.
type upsertIndexFileInfo struct {
	RelativePath string `json:"relative_path"`
	Content      string `json:"content"`
}

type upsertIndexRequest struct {
	UID         string                `json:"uid"`
	RepoAbsPath string                `json:"repo_abs_path"`
	FileInfos   []upsertIndexFileInfo `json:"file_infos"`
}

type upsertIndexFileIDInfo struct {
	FileID       string `json:"file_id"`
	RelativePath string `json:"relative_path"`
}

type upsertIndexResponse struct {
	RepoID    string                  `json:"repo_id"`
	FileInfos []upsertIndexFileIDInfo `json:"file_infos"`
}

func (s *Server) handleUpsertIndex(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req upsertIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	fileInfos := make([]indexer.FileInfo, len(req.FileInfos))
	for i, fi := range req.FileInfos {
		fileInfos[i] = indexer.FileInfo{RelativePath: fi.RelativePath, Content: []byte(fi.Content)}
	}

	result, err := s.indexer.UpsertIndex(r.Context(), indexer.UpsertIndexRequest{
		UID:         req.UID,
		RepoAbsPath: req.RepoAbsPath,
		FileInfos:   fileInfos,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	resp := upsertIndexResponse{RepoID: result.RepoID, FileInfos: make([]upsertIndexFileIDInfo, len(result.FileInfos))}
	for i, fi := range result.FileInfos {
		resp.FileInfos[i] = upsertIndexFileIDInfo{FileID: fi.FileID, RelativePath: fi.RelativePath}
	}
	writeOK(w, resp)
}

func (s *Server) handleUpsertIndexByFile(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, s.logger, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, s.logger, cverrors.Validation("missing file part"))
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	repoID, err := s.indexer.UpsertFile(r.Context(), indexer.UpsertFileRequest{
		UID:          r.FormValue("uid"),
		RepoAbsPath:  r.FormValue("repo_abs_path"),
		RelativePath: r.FormValue("relative_path"),
		Content:      content,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeOK(w, map[string]string{"repo_id": repoID})
}

type dropIndexRequest struct {
	RepoID string `json:"repo_id"`
}

func (s *Server) handleDropIndex(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dropIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.indexer.Drop(r.Context(), req.RepoID); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeOK(w, nil)
}

type deleteIndexRequest struct {
	RepoID  string   `json:"repo_id"`
	FileIDs []string `json:"file_ids"`
}

func (s *Server) handleDeleteIndex(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req deleteIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.indexer.Delete(r.Context(), req.RepoID, req.FileIDs); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeOK(w, nil)
}

type allIndexRequest struct {
	RepoID string `json:"repo_id"`
}

func (s *Server) handleAllIndex(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req allIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	metas, err := s.indexer.AllMeta(r.Context(), req.RepoID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeOK(w, metas)
}
