package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modbot/internal/config"
	"modbot/internal/core"
	"modbot/internal/persistence"
)

func testAlert() core.Alert {
	return core.Alert{
		ID:           "alert-1",
		UserID:       "user-1",
		CommunityID:  "community-1",
		RuleID:       "rule-1",
		Title:        "Keyword match detected: spam watch",
		Description:  `A posts in r/golang was flagged by monitoring rule "spam watch". Keyword match detected: spam`,
		Severity:     core.SeverityMedium,
		RedditPostID: "abc123",
	}
}

func TestWebhookSendAlert(t *testing.T) {
	var gotPayload WebhookPayload
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewWebhookClient()
	if err := client.SendAlert(srv.URL, testAlert(), "golang"); err != nil {
		t.Fatalf("SendAlert failed: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotPayload.Event != "alert.created" {
		t.Errorf("Event = %q, want alert.created", gotPayload.Event)
	}
	if gotPayload.Subreddit != "golang" {
		t.Errorf("Subreddit = %q", gotPayload.Subreddit)
	}
	if gotPayload.Alert.ID != "alert-1" {
		t.Errorf("Alert.ID = %q", gotPayload.Alert.ID)
	}
	if gotPayload.SentAt.IsZero() {
		t.Error("SentAt not set")
	}
}

func TestWebhookSendAlertNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad signature", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewWebhookClient()
	err := client.SendAlert(srv.URL, testAlert(), "golang")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should include status code, got: %v", err)
	}
}

func TestWebhookSendAlertEmptyURL(t *testing.T) {
	client := NewWebhookClient()
	if err := client.SendAlert("", testAlert(), "golang"); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestRenderAlertEmail(t *testing.T) {
	alert := testAlert()
	body, err := RenderAlertEmail(alert)
	if err != nil {
		t.Fatalf("RenderAlertEmail failed: %v", err)
	}

	for _, want := range []string{alert.Title, "spam watch", string(core.SeverityMedium), "abc123"} {
		if !strings.Contains(body, want) {
			t.Errorf("email body missing %q", want)
		}
	}
}

func TestNewEmailSenderValidation(t *testing.T) {
	_, err := NewEmailSender(config.Notifications{})
	if err == nil {
		t.Fatal("expected error without smtp host and from address")
	}

	cfg := config.Notifications{
		FromAddress: "alerts@example.com",
		SMTP:        config.SMTP{Host: "smtp.example.com", Port: 587},
	}
	if _, err := NewEmailSender(cfg); err != nil {
		t.Fatalf("NewEmailSender failed: %v", err)
	}
}

type recordingWebhook struct {
	urls []string
}

func (r *recordingWebhook) SendAlert(url string, alert core.Alert, subreddit string) error {
	r.urls = append(r.urls, url)
	return nil
}

type recordingEmailer struct {
	addresses []string
}

func (r *recordingEmailer) SendAlert(to string, alert core.Alert) error {
	r.addresses = append(r.addresses, to)
	return nil
}

func seedSetting(t *testing.T, repo persistence.NotificationSettingRepository, setting core.NotificationSetting) {
	t.Helper()
	if err := repo.Upsert(context.Background(), &setting); err != nil {
		t.Fatalf("failed to seed notification setting: %v", err)
	}
}

func TestDispatchFansOutToEnabledChannels(t *testing.T) {
	db := persistence.NewMemoryDB()
	settings := db.NotificationSettings()

	seedSetting(t, settings, core.NotificationSetting{
		UserID:     "user-1",
		Channel:    core.ChannelWebhook,
		IsEnabled:  true,
		WebhookURL: "https://hooks.example.com/modbot",
	})
	seedSetting(t, settings, core.NotificationSetting{
		UserID:       "user-1",
		Channel:      core.ChannelEmail,
		IsEnabled:    true,
		EmailAddress: "mod@example.com",
	})
	seedSetting(t, settings, core.NotificationSetting{
		UserID:    "user-1",
		Channel:   core.ChannelInApp,
		IsEnabled: true,
	})

	webhook := &recordingWebhook{}
	emailer := &recordingEmailer{}
	dispatcher := NewDispatcher(settings, webhook, emailer)

	dispatcher.Dispatch(context.Background(), testAlert(), "golang")

	if len(webhook.urls) != 1 || webhook.urls[0] != "https://hooks.example.com/modbot" {
		t.Errorf("webhook calls = %v", webhook.urls)
	}
	if len(emailer.addresses) != 1 || emailer.addresses[0] != "mod@example.com" {
		t.Errorf("email calls = %v", emailer.addresses)
	}
}

func TestDispatchSkipsDisabledChannel(t *testing.T) {
	db := persistence.NewMemoryDB()
	settings := db.NotificationSettings()

	seedSetting(t, settings, core.NotificationSetting{
		UserID:     "user-1",
		Channel:    core.ChannelWebhook,
		IsEnabled:  false,
		WebhookURL: "https://hooks.example.com/modbot",
	})

	webhook := &recordingWebhook{}
	dispatcher := NewDispatcher(settings, webhook, nil)

	dispatcher.Dispatch(context.Background(), testAlert(), "golang")

	if len(webhook.urls) != 0 {
		t.Errorf("disabled webhook channel was called: %v", webhook.urls)
	}
}

func TestDispatchSkipsChannelsMissingDestination(t *testing.T) {
	db := persistence.NewMemoryDB()
	settings := db.NotificationSettings()

	seedSetting(t, settings, core.NotificationSetting{
		UserID:    "user-1",
		Channel:   core.ChannelWebhook,
		IsEnabled: true,
	})
	seedSetting(t, settings, core.NotificationSetting{
		UserID:    "user-1",
		Channel:   core.ChannelEmail,
		IsEnabled: true,
	})

	webhook := &recordingWebhook{}
	emailer := &recordingEmailer{}
	dispatcher := NewDispatcher(settings, webhook, emailer)

	dispatcher.Dispatch(context.Background(), testAlert(), "golang")

	if len(webhook.urls) != 0 {
		t.Errorf("webhook without URL was called: %v", webhook.urls)
	}
	if len(emailer.addresses) != 0 {
		t.Errorf("email without address was called: %v", emailer.addresses)
	}
}

func TestDispatchWithNilEmailer(t *testing.T) {
	db := persistence.NewMemoryDB()
	settings := db.NotificationSettings()

	seedSetting(t, settings, core.NotificationSetting{
		UserID:       "user-1",
		Channel:      core.ChannelEmail,
		IsEnabled:    true,
		EmailAddress: "mod@example.com",
	})

	dispatcher := NewDispatcher(settings, &recordingWebhook{}, nil)

	// Must not panic when SMTP is unconfigured.
	dispatcher.Dispatch(context.Background(), testAlert(), "golang")
}

func TestDispatchOtherUsersSettingsIgnored(t *testing.T) {
	db := persistence.NewMemoryDB()
	settings := db.NotificationSettings()

	seedSetting(t, settings, core.NotificationSetting{
		UserID:     "user-2",
		Channel:    core.ChannelWebhook,
		IsEnabled:  true,
		WebhookURL: "https://hooks.example.com/other",
	})

	webhook := &recordingWebhook{}
	dispatcher := NewDispatcher(settings, webhook, nil)

	dispatcher.Dispatch(context.Background(), testAlert(), "golang")

	if len(webhook.urls) != 0 {
		t.Errorf("another user's webhook was called: %v", webhook.urls)
	}
}
