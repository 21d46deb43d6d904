// Package httpapi exposes the keeper's REST surface: account management,
// the encrypted file tree and content endpoints, and temporary shares.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/logging"
	"github.com/avolkovs/keepsake/internal/server/auth"
	"github.com/avolkovs/keepsake/internal/server/shares"
	"github.com/avolkovs/keepsake/internal/server/users"
	"github.com/avolkovs/keepsake/internal/server/vault"
)

// Server is the HTTP server for the keepsake API.
type Server struct {
	logger    logging.Logger
	users     *users.Service
	vault     *vault.Service
	shares    *shares.Service
	jwtSecret []byte
	mux       *http.ServeMux
}

// New creates a Server with all routes registered.
func New(logger logging.Logger, userSvc *users.Service, vaultSvc *vault.Service, shareSvc *shares.Service, jwtSecret []byte) *Server {
	s := &Server{
		logger:    logger,
		users:     userSvc,
		vault:     vaultSvc,
		shares:    shareSvc,
		jwtSecret: jwtSecret,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Accounts
	s.mux.HandleFunc("POST /api/user/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/user/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/user/refresh", s.handleRefresh)
	s.mux.HandleFunc("POST /api/user/password", s.withAuth(s.handleChangePassword))

	// Encrypted tree and content
	s.mux.HandleFunc("GET /filetree", s.withAuth(s.handleGetTree))
	s.mux.HandleFunc("POST /filetree", s.withAuth(s.handlePutTree))
	s.mux.HandleFunc("GET /content", s.withAuth(s.handleGetContent))
	s.mux.HandleFunc("POST /content", s.withAuth(s.handlePutContent))
	s.mux.HandleFunc("POST /remove_file", s.withAuth(s.handleRemoveFile))
	s.mux.HandleFunc("POST /rename", s.withAuth(s.handleRename))

	// Shares
	s.mux.HandleFunc("POST /api/share", s.withAuth(s.handleCreateShare))
	s.mux.HandleFunc("GET /api/share", s.withAuth(s.handleListShares))
	s.mux.HandleFunc("DELETE /api/share/{id}", s.withAuth(s.handleDeleteShare))

	// Public
	s.mux.HandleFunc("POST /s/{id}", s.handleFetchShare)

	// Health
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
}

// authedHandler is a handler that runs on behalf of an authenticated user.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// withAuth resolves the bearer access token into a user id before
// invoking the wrapped handler.
func (s *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid access token")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "keepsake",
	})
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrorInvalidInput
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// serviceError maps a service error onto an HTTP status and writes it.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	s.logger.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "status", status)
	writeError(w, status, err.Error())
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrorInvalidInput), errors.Is(err, common.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrPasswordRequired):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
