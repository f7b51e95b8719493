package server

import (
	"net/http"

	"modbot/internal/core"
)

// handleRedditAuthURL handles POST /api/reddit/auth-url
func (s *Server) handleRedditAuthURL(w http.ResponseWriter, r *http.Request) {
	if s.reddit == nil {
		s.respondError(w, http.StatusServiceUnavailable, "reddit integration is not configured")
		return
	}

	var req struct {
		State string `json:"state"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.State == "" {
		s.respondError(w, http.StatusBadRequest, "state is required")
		return
	}

	url, err := s.reddit.AuthURL(req.State)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"authUrl": url})
}

// handleRedditExchange handles POST /api/reddit/exchange. It trades the
// authorization code for a token, confirms the Reddit identity, and
// upserts the user's profile with the token attached.
func (s *Server) handleRedditExchange(w http.ResponseWriter, r *http.Request) {
	if s.reddit == nil {
		s.respondError(w, http.StatusServiceUnavailable, "reddit integration is not configured")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		s.respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	ctx := r.Context()
	token, err := s.reddit.Exchange(ctx, req.Code)
	if err != nil {
		s.log.Warn("Reddit code exchange failed", "error", err)
		s.respondError(w, http.StatusBadGateway, "reddit token exchange failed")
		return
	}

	identity, err := s.reddit.Identity(ctx, token)
	if err != nil {
		s.log.Warn("Reddit identity lookup failed", "error", err)
		s.respondError(w, http.StatusBadGateway, "reddit identity lookup failed")
		return
	}

	profile := &core.UserProfile{
		UserID:         userID(r),
		RedditUsername: identity.Name,
		RedditID:       identity.ID,
		IsMod:          identity.IsMod,
		TotalKarma:     identity.TotalKarma,
		RedditToken:    token,
	}
	if err := s.db.Profiles().Upsert(ctx, profile); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to store profile")
		return
	}

	s.respondJSON(w, http.StatusOK, profile)
}

// handleRedditSync handles POST /api/reddit/sync. It pulls the moderated
// subreddits for the user's stored token and upserts them as communities.
func (s *Server) handleRedditSync(w http.ResponseWriter, r *http.Request) {
	if s.reddit == nil {
		s.respondError(w, http.StatusServiceUnavailable, "reddit integration is not configured")
		return
	}

	ctx := r.Context()
	uid := userID(r)

	profile, err := s.db.Profiles().GetByUserID(ctx, uid)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if profile == nil || profile.RedditToken == "" {
		s.respondError(w, http.StatusUnauthorized, "reddit account is not connected")
		return
	}

	subreddits, err := s.reddit.ModeratedSubreddits(ctx, profile.RedditToken)
	if err != nil {
		s.log.Warn("Moderated subreddit listing failed", "user_id", uid, "error", err)
		s.respondError(w, http.StatusBadGateway, "failed to list moderated subreddits")
		return
	}

	synced := make([]core.Community, 0, len(subreddits))
	for _, sub := range subreddits {
		community := &core.Community{
			UserID:        uid,
			SubredditID:   sub.ID,
			SubredditName: sub.DisplayName,
			DisplayName:   sub.DisplayNamePrefix,
			Description:   sub.PublicDescription,
			Subscribers:   sub.Subscribers,
			IsModerator:   true,
		}
		if err := s.db.Communities().Upsert(ctx, community); err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to store community")
			return
		}
		synced = append(synced, *community)
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"synced":      len(synced),
		"communities": synced,
	})
}

// handleRedditDisconnect handles POST /api/reddit/disconnect. It clears the
// stored token; the profile row and synced communities remain.
func (s *Server) handleRedditDisconnect(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	profile, err := s.db.Profiles().GetByUserID(r.Context(), uid)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if profile == nil {
		s.respondError(w, http.StatusNotFound, "no reddit account connected")
		return
	}

	if err := s.db.Profiles().SetToken(r.Context(), uid, ""); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to disconnect")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
