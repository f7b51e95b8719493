package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type contextKey string

const userIDKey contextKey = "user_id"

// requireUserID scopes every request to the tenant named by the X-User-ID
// header. Requests without it are rejected before any repository call.
func (s *Server) requireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			s.respondError(w, http.StatusBadRequest, "X-User-ID header is required")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// Health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := s.db.Ping(r.Context()); err != nil {
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}

	checks["database"] = "ok"

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// StatsResponse summarizes a user's dashboard counters.
type StatsResponse struct {
	Communities  int `json:"communities"`
	ActiveRules  int `json:"activeRules"`
	UnreadAlerts int `json:"unreadAlerts"`
	AlertsLast24 int `json:"alertsLast24h"`
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(r)

	communities, err := s.db.Communities().CountByUser(ctx, uid)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	activeRules, err := s.db.Rules().CountActiveByUser(ctx, uid)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	unread, err := s.db.Alerts().CountUnreadByUser(ctx, uid)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	recent, err := s.db.Alerts().CountSince(ctx, uid, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	s.respondJSON(w, http.StatusOK, StatsResponse{
		Communities:  communities,
		ActiveRules:  activeRules,
		UnreadAlerts: unread,
		AlertsLast24: recent,
	})
}

// handleMonitorRun handles POST /api/monitor/run
func (s *Server) handleMonitorRun(w http.ResponseWriter, r *http.Request) {
	summary, err := s.scanner.Run(r.Context())
	if err != nil {
		s.log.Error("Scan trigger failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a JSON error body
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
