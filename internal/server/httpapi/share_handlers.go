package httpapi

import (
	"net/http"
	"time"
)

type createShareRequest struct {
	Strategy       string `json:"strategy"`
	MaxDate        string `json:"max_date"`
	Password       string `json:"password,omitempty"`
	IV             string `json:"iv"`
	EncodedContent string `json:"encoded_content"`
}

type fetchShareRequest struct {
	Password string `json:"password,omitempty"`
}

type shareSummary struct {
	Identifier string    `json:"identifier"`
	Strategy   string    `json:"strategy"`
	MaxDate    time.Time `json:"max_date"`
	Protected  bool      `json:"protected"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request, userID string) {
	var req createShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	maxDate, err := time.Parse(time.RFC3339, req.MaxDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "max_date must be an RFC 3339 timestamp")
		return
	}

	share, err := s.shares.Create(r.Context(), userID, req.Strategy, maxDate, req.Password, req.IV, req.EncodedContent)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"identifier": share.ID})
}

func (s *Server) handleListShares(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := s.shares.ListByUser(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	summaries := make([]shareSummary, 0, len(list))
	for _, share := range list {
		summaries = append(summaries, shareSummary{
			Identifier: share.ID,
			Strategy:   share.Strategy,
			MaxDate:    share.MaxDate,
			Protected:  share.Protected(),
			CreatedAt:  share.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string][]shareSummary{"shares": summaries})
}

func (s *Server) handleDeleteShare(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing share id")
		return
	}

	if err := s.shares.Delete(r.Context(), userID, id); err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleFetchShare is the anonymous read side of a share link. A share
// that turns out to be past its deadline answers 410, never 404, so the
// recipient can tell "expired" from "never existed".
func (s *Server) handleFetchShare(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req fetchShareRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	share, err := s.shares.Fetch(r.Context(), id, req.Password)
	if err != nil {
		s.writeShareFetchError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"content": share.Content,
		"iv":      share.IV,
	})
}

// writeShareFetchError keeps the anonymous surface terse. Wrong
// password and missing password both read as "password required" so the
// endpoint does not confirm whether a guess was close.
func (s *Server) writeShareFetchError(w http.ResponseWriter, r *http.Request, err error) {
	switch statusFromError(err) {
	case http.StatusForbidden:
		writeError(w, http.StatusForbidden, "password required")
	case http.StatusNotFound:
		writeError(w, http.StatusNotFound, "share not found")
	case http.StatusGone:
		writeError(w, http.StatusGone, "share expired")
	default:
		s.serviceError(w, r, err)
	}
}
