// Package notify delivers pending actions to Slack, Telegram or the log.
package notify

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ContentCurator/internal/config"
	"ContentCurator/internal/ports"
)

const defaultTimeout = 5 * time.Second

// New picks the notifier named by cfg.Channel. With no channel the first
// configured of Slack and Telegram wins, falling back to the log notifier.
func New(cfg config.NotificationConfig, log *slog.Logger) ports.Notifier {
	client := &http.Client{Timeout: defaultTimeout}
	switch strings.ToLower(strings.TrimSpace(cfg.Channel)) {
	case "slack":
		return NewSlack(cfg.Slack.WebhookURL, client)
	case "telegram":
		return NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, client)
	case "log":
		return NewLog(log)
	}

	switch {
	case cfg.Slack.WebhookURL != "":
		return NewSlack(cfg.Slack.WebhookURL, client)
	case cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "":
		return NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, client)
	default:
		return NewLog(log)
	}
}
