package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"scadenze/internal/auth"
	"scadenze/internal/core"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := sanitizeInput(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, http.StatusUnprocessableEntity, "invalid email")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	profile, err := s.auth.Register(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		slog.ErrorContext(r.Context(), "Registration failed", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, toProfilePayload(*profile))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.auth.Login(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		// A broken merge must not look like a signed-in user.
		if errors.Is(err, core.ErrReconcileFailed) {
			slog.ErrorContext(r.Context(), "Profile reconciliation failed during login", "error", err)
			writeError(w, http.StatusInternalServerError, "could not resolve user profile")
			return
		}
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, toProfilePayload(*profile))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.auth.Logout(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	profile, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toProfilePayload(*profile))
}

type moneyRequest struct {
	AvailableMoney string `json:"available_money"`
}

func (s *Server) handleUpdateMoney(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.Header().Set("Allow", "PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	profile, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req moneyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.AvailableMoney)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	if err := s.auth.UpdateAvailableMoney(r.Context(), amount); err != nil {
		slog.ErrorContext(r.Context(), "Available money update failed", "user_id", profile.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}

	// Balance changed, cached projections are stale.
	s.invalidateProjections(profile.ID)

	writeJSON(w, http.StatusOK, nil)
}

// requireUser resolves the active session to a profile, answering 401
// when nobody is signed in.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*core.Profile, bool) {
	profile, err := s.auth.CurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrReconcileFailed) {
			slog.ErrorContext(r.Context(), "Profile reconciliation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not resolve user profile")
			return nil, false
		}
		slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return nil, false
	}
	if profile == nil {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return nil, false
	}
	return profile, true
}
