package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"modbot/internal/core"
	"modbot/internal/schedule"
)

func validFrequency(f core.ScheduleFrequency) bool {
	switch f {
	case core.FrequencyHourly, core.FrequencyDaily, core.FrequencyWeekly, core.FrequencyMonthly:
		return true
	}
	return false
}

// handleListSchedules handles GET /api/schedules
func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.db.Schedules().ListByUser(r.Context(), userID(r), listOptions(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list schedules")
		return
	}
	if schedules == nil {
		schedules = []core.Schedule{}
	}
	s.respondJSON(w, http.StatusOK, schedules)
}

// handleCreateSchedule handles POST /api/schedules. NextRun is computed
// from the frequency at creation time.
func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var sched core.Schedule
	if err := decodeJSON(r, &sched); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sched.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validFrequency(sched.Frequency) {
		s.respondError(w, http.StatusBadRequest, "invalid frequency")
		return
	}

	sched.UserID = userID(r)
	sched.IsActive = true
	sched.NextRun = schedule.NextRun(sched.Frequency, time.Now().UTC())
	if err := s.db.Schedules().Create(r.Context(), &sched); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create schedule")
		return
	}
	s.respondJSON(w, http.StatusCreated, sched)
}

// getOwnedSchedule loads a schedule and enforces tenant ownership.
func (s *Server) getOwnedSchedule(w http.ResponseWriter, r *http.Request) *core.Schedule {
	sched, err := s.db.Schedules().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load schedule")
		return nil
	}
	if sched == nil || sched.UserID != userID(r) {
		s.respondError(w, http.StatusNotFound, "schedule not found")
		return nil
	}
	return sched
}

// handleSetScheduleActive handles PATCH /api/schedules/{id}/active
func (s *Server) handleSetScheduleActive(w http.ResponseWriter, r *http.Request) {
	sched := s.getOwnedSchedule(w, r)
	if sched == nil {
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.db.Schedules().SetActive(r.Context(), sched.ID, req.IsActive); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to toggle schedule")
		return
	}
	sched.IsActive = req.IsActive

	// Re-activation restarts the cadence from now rather than from a
	// next-run that may be long in the past.
	if req.IsActive {
		next := schedule.NextRun(sched.Frequency, time.Now().UTC())
		if err := s.db.Schedules().UpdateNextRun(r.Context(), sched.ID, next); err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to update schedule")
			return
		}
		sched.NextRun = next
	}

	s.respondJSON(w, http.StatusOK, sched)
}

// handleDeleteSchedule handles DELETE /api/schedules/{id}
func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	sched := s.getOwnedSchedule(w, r)
	if sched == nil {
		return
	}

	if err := s.db.Schedules().Delete(r.Context(), sched.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to delete schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
