package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"modbot/internal/core"
	"modbot/internal/persistence"
)

// listOptions reads limit/offset query parameters.
func listOptions(r *http.Request) persistence.ListOptions {
	var opts persistence.ListOptions
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Offset = n
		}
	}
	return opts
}

// handleListCommunities handles GET /api/communities
func (s *Server) handleListCommunities(w http.ResponseWriter, r *http.Request) {
	communities, err := s.db.Communities().ListByUser(r.Context(), userID(r), listOptions(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list communities")
		return
	}
	if communities == nil {
		communities = []core.Community{}
	}
	s.respondJSON(w, http.StatusOK, communities)
}

// handleUpsertCommunity handles POST /api/communities
func (s *Server) handleUpsertCommunity(w http.ResponseWriter, r *http.Request) {
	var community core.Community
	if err := decodeJSON(r, &community); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if community.SubredditName == "" {
		s.respondError(w, http.StatusBadRequest, "subreddit_name is required")
		return
	}

	community.UserID = userID(r)
	if err := s.db.Communities().Upsert(r.Context(), &community); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to store community")
		return
	}
	s.respondJSON(w, http.StatusOK, community)
}

// handleUpdateCommunityStatus handles PATCH /api/communities/{id}/status
func (s *Server) handleUpdateCommunityStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status core.SubredditStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case core.StatusActive, core.StatusPaused, core.StatusArchived:
	default:
		s.respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	id := chi.URLParam(r, "id")
	community, err := s.db.Communities().Get(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load community")
		return
	}
	if community == nil || community.UserID != userID(r) {
		s.respondError(w, http.StatusNotFound, "community not found")
		return
	}

	if err := s.db.Communities().UpdateStatus(r.Context(), id, req.Status); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	community.Status = req.Status
	s.respondJSON(w, http.StatusOK, community)
}
