package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"modbot/internal/core"
)

// handleListAlerts handles GET /api/alerts. The unread=true query filters
// down to unread alerts client-side semantics from the dashboard.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.db.Alerts().ListByUser(r.Context(), userID(r), listOptions(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	if unread, _ := strconv.ParseBool(r.URL.Query().Get("unread")); unread {
		filtered := alerts[:0]
		for _, alert := range alerts {
			if !alert.IsRead {
				filtered = append(filtered, alert)
			}
		}
		alerts = filtered
	}

	if alerts == nil {
		alerts = []core.Alert{}
	}
	s.respondJSON(w, http.StatusOK, alerts)
}

// handleMarkAlertRead handles PATCH /api/alerts/{id}/read
func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alert, err := s.db.Alerts().Get(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load alert")
		return
	}
	if alert == nil || alert.UserID != userID(r) {
		s.respondError(w, http.StatusNotFound, "alert not found")
		return
	}

	if err := s.db.Alerts().MarkRead(r.Context(), id); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to mark alert read")
		return
	}
	alert.IsRead = true
	s.respondJSON(w, http.StatusOK, alert)
}
