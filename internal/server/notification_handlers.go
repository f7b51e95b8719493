package server

import (
	"net/http"

	"modbot/internal/core"
)

// handleListNotificationSettings handles GET /api/notification-settings
func (s *Server) handleListNotificationSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.db.NotificationSettings().ListByUser(r.Context(), userID(r))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to list notification settings")
		return
	}
	if settings == nil {
		settings = []core.NotificationSetting{}
	}
	s.respondJSON(w, http.StatusOK, settings)
}

// handleUpsertNotificationSetting handles PUT /api/notification-settings.
// One row per channel; posting the same channel twice updates in place.
func (s *Server) handleUpsertNotificationSetting(w http.ResponseWriter, r *http.Request) {
	var setting core.NotificationSetting
	if err := decodeJSON(r, &setting); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch setting.Channel {
	case core.ChannelEmail, core.ChannelInApp, core.ChannelWebhook:
	default:
		s.respondError(w, http.StatusBadRequest, "invalid notification_type")
		return
	}
	if setting.Channel == core.ChannelEmail && setting.IsEnabled && setting.EmailAddress == "" {
		s.respondError(w, http.StatusBadRequest, "email_address is required for the email channel")
		return
	}
	if setting.Channel == core.ChannelWebhook && setting.IsEnabled && setting.WebhookURL == "" {
		s.respondError(w, http.StatusBadRequest, "webhook_url is required for the webhook channel")
		return
	}

	setting.UserID = userID(r)
	if err := s.db.NotificationSettings().Upsert(r.Context(), &setting); err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to store notification setting")
		return
	}
	s.respondJSON(w, http.StatusOK, setting)
}
