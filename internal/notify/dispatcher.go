package notify

import (
	"context"
	"log/slog"

	"modbot/internal/core"
	"modbot/internal/logger"
	"modbot/internal/persistence"
)

// WebhookSender posts an alert to a webhook URL.
type WebhookSender interface {
	SendAlert(url string, alert core.Alert, subreddit string) error
}

// AlertEmailer delivers an alert to an email address.
type AlertEmailer interface {
	SendAlert(to string, alert core.Alert) error
}

// Dispatcher fans a created alert out to the user's enabled notification
// channels. Delivery is best effort: a failed channel is logged and skipped,
// never surfaced to the scan that produced the alert. The in_app channel
// needs no delivery here because the stored alert row is the in-app
// notification.
type Dispatcher struct {
	settings persistence.NotificationSettingRepository
	webhooks WebhookSender
	email    AlertEmailer
	log      *slog.Logger
}

// NewDispatcher creates a dispatcher. email may be nil when SMTP is not
// configured; email settings are then skipped.
func NewDispatcher(settings persistence.NotificationSettingRepository, webhooks WebhookSender, email AlertEmailer) *Dispatcher {
	return &Dispatcher{
		settings: settings,
		webhooks: webhooks,
		email:    email,
		log:      logger.Get(),
	}
}

// Dispatch sends one alert through every enabled channel for its user.
func (d *Dispatcher) Dispatch(ctx context.Context, alert core.Alert, subreddit string) {
	settings, err := d.settings.ListEnabledByUser(ctx, alert.UserID)
	if err != nil {
		d.log.Error("Failed to load notification settings", "user_id", alert.UserID, "error", err)
		return
	}

	for _, setting := range settings {
		switch setting.Channel {
		case core.ChannelWebhook:
			if d.webhooks == nil || setting.WebhookURL == "" {
				continue
			}
			if err := d.webhooks.SendAlert(setting.WebhookURL, alert, subreddit); err != nil {
				d.log.Warn("Webhook notification failed", "user_id", alert.UserID, "error", err)
			}
		case core.ChannelEmail:
			if d.email == nil || setting.EmailAddress == "" {
				continue
			}
			if err := d.email.SendAlert(setting.EmailAddress, alert); err != nil {
				d.log.Warn("Email notification failed", "user_id", alert.UserID, "error", err)
			}
		case core.ChannelInApp:
			// Stored alert row already serves as the in-app notification.
		}
	}
}
