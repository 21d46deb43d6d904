package httpapi

import (
	"net/http"
)

type putTreeRequest struct {
	FileTree string `json:"file_tree"`
}

type putContentRequest struct {
	FilePath       string `json:"file_path"`
	EncodedContent string `json:"encoded_content"`
}

type removeFileRequest struct {
	FilePath string `json:"file_path"`
}

type renameRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request, userID string) {
	tree, err := s.vault.GetTree(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file_tree": tree})
}

func (s *Server) handlePutTree(w http.ResponseWriter, r *http.Request, userID string) {
	var req putTreeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.vault.PutTree(r.Context(), userID, req.FileTree); err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request, userID string) {
	path := r.URL.Query().Get("file_path")
	content, err := s.vault.GetContent(r.Context(), userID, path)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"encoded_content": content})
}

func (s *Server) handlePutContent(w http.ResponseWriter, r *http.Request, userID string) {
	var req putContentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.vault.PutContent(r.Context(), userID, req.FilePath, req.EncodedContent); err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleRemoveFile deletes one content blob. Removal is idempotent so a
// retry after a half-finished folder delete still succeeds.
func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request, userID string) {
	var req removeFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.vault.DeleteContent(r.Context(), userID, req.FilePath); err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleRename moves a single content blob to a new path. The stored
// tree blob is opaque to the server, so it is returned unchanged and
// the client reconciles its own tree.
func (s *Server) handleRename(w http.ResponseWriter, r *http.Request, userID string) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tree, err := s.vault.RenameContent(r.Context(), userID, req.OldPath, req.NewPath)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"file_tree": tree,
	})
}
