package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"modbot/internal/core"
)

func validMonitoringType(t core.MonitoringType) bool {
	switch t {
	case core.MonitorPosts, core.MonitorComments, core.MonitorModqueue, core.MonitorReports:
		return true
	}
	return false
}

// handleListRules handles GET /api/rules
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.db.Rules().ListByUser(r.Context(), userID(r), listOptions(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list rules")
		return
	}
	if rules == nil {
		rules = []core.MonitoringRule{}
	}
	s.respondJSON(w, http.StatusOK, rules)
}

// handleCreateRule handles POST /api/rules
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var rule core.MonitoringRule
	if err := decodeJSON(r, &rule); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rule.Name == "" || rule.CommunityID == "" {
		s.respondError(w, http.StatusBadRequest, "name and community_id are required")
		return
	}
	if !validMonitoringType(rule.MonitoringType) {
		s.respondError(w, http.StatusBadRequest, "invalid monitoring_type")
		return
	}
	if rule.UseAI && rule.AIPrompt == "" {
		s.respondError(w, http.StatusBadRequest, "ai_prompt is required when use_ai is set")
		return
	}

	ctx := r.Context()
	uid := userID(r)

	community, err := s.db.Communities().Get(ctx, rule.CommunityID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load community")
		return
	}
	if community == nil || community.UserID != uid {
		s.respondError(w, http.StatusNotFound, "community not found")
		return
	}

	rule.UserID = uid
	if err := s.db.Rules().Create(ctx, &rule); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to create rule")
		return
	}
	s.respondJSON(w, http.StatusCreated, rule)
}

// getOwnedRule loads a rule and enforces tenant ownership.
func (s *Server) getOwnedRule(w http.ResponseWriter, r *http.Request) *core.MonitoringRule {
	rule, err := s.db.Rules().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load rule")
		return nil
	}
	if rule == nil || rule.UserID != userID(r) {
		s.respondError(w, http.StatusNotFound, "rule not found")
		return nil
	}
	return rule
}

// handleGetRule handles GET /api/rules/{id}
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule := s.getOwnedRule(w, r)
	if rule == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, rule)
}

// handleUpdateRule handles PUT /api/rules/{id}
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	existing := s.getOwnedRule(w, r)
	if existing == nil {
		return
	}

	var update core.MonitoringRule
	if err := decodeJSON(r, &update); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if update.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validMonitoringType(update.MonitoringType) {
		s.respondError(w, http.StatusBadRequest, "invalid monitoring_type")
		return
	}

	update.ID = existing.ID
	update.UserID = existing.UserID
	update.CommunityID = existing.CommunityID
	if err := s.db.Rules().Update(r.Context(), &update); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to update rule")
		return
	}
	s.respondJSON(w, http.StatusOK, update)
}

// handleSetRuleActive handles PATCH /api/rules/{id}/active
func (s *Server) handleSetRuleActive(w http.ResponseWriter, r *http.Request) {
	rule := s.getOwnedRule(w, r)
	if rule == nil {
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.db.Rules().SetActive(r.Context(), rule.ID, req.IsActive); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to toggle rule")
		return
	}
	rule.IsActive = req.IsActive
	s.respondJSON(w, http.StatusOK, rule)
}

// handleDeleteRule handles DELETE /api/rules/{id}
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	rule := s.getOwnedRule(w, r)
	if rule == nil {
		return
	}

	if err := s.db.Rules().Delete(r.Context(), rule.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to delete rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
