package handler

import (
	"encoding/json"
	"net/http"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
)

// Identity keys bound to the session on login.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
)

// handleLogin handles POST /login. The session id is rotated before the
// identity is bound, so an id known before login is useless afterwards.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code, "invalid request body")
		return
	}
	if req.UserID <= 0 || req.Username == "" {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrMissingArgument.Code, "user_id and username are required")
		return
	}

	if _, err := s.Regenerate(r.Context(), true); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	s.Set(KeyUserID, req.UserID)
	s.Set(KeyUsername, req.Username)

	logger.L(r.Context()).Info("user logged in", "user_id", req.UserID)
	h.writeJSON(w, r, http.StatusOK, LoginResponse{UserID: req.UserID, Username: req.Username})
}

// handleLogout handles POST /logout.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	if !s.Destroy(r.Context()) {
		h.writeError(w, r, http.StatusInternalServerError, domain.ErrStorageError.Code, "failed to destroy session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
