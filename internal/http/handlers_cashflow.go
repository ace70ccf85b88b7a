package http

import (
	"log/slog"
	"net/http"

	"scadenze/internal/core"
	"scadenze/internal/services"
)

// handleCashflow serves the signed-in user's cash-flow projection.
func (s *Server) handleCashflow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	profile, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	today := core.Today()
	key := projectionKey(profile.ID, today)

	if result, found := s.projectionCache.Get(key); found {
		slog.DebugContext(r.Context(), "Projection cache hit", "user_id", profile.ID, "day", today.Key())
		writeJSON(w, http.StatusOK, toProjectionPayload(result))
		return
	}

	bills, err := s.bills.List(r.Context(), profile.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Bill list failed", "user_id", profile.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute projection")
		return
	}

	result := services.Project(profile.AvailableMoney, bills, today)
	s.projectionCache.Set(key, result)

	writeJSON(w, http.StatusOK, toProjectionPayload(result))
}

func projectionKey(userID string, day core.Date) string {
	return userID + "|" + day.Key()
}

// invalidateProjections drops every cached projection for the user.
func (s *Server) invalidateProjections(userID string) {
	s.projectionCache.DeletePrefix(userID + "|")
}
