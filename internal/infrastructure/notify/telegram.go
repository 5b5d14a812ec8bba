package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const telegramAPI = "https://api.telegram.org"

// Telegram sends actions to a chat via the bot API.
type Telegram struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Telegram)(nil)

// NewTelegram registers bot token and chat identifier.
func NewTelegram(botToken, chatID string, client *http.Client) *Telegram {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Telegram{baseURL: telegramAPI, botToken: botToken, chatID: chatID, client: client}
}

func telegramText(action domain.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*New Action:* %s\n", action.Title)
	if action.Description != "" {
		b.WriteString(action.Description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "*Priority:* %s | *Type:* %s", action.Priority, action.Type)
	return b.String()
}

// Send posts a Markdown message to Telegram.
func (n *Telegram) Send(ctx context.Context, action domain.Action) domain.NotifyResult {
	if n.botToken == "" || n.chatID == "" {
		return domain.NotifyResult{Error: "telegram notifier misconfigured"}
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", telegramText(action))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.NotifyResult{Error: fmt.Sprintf("new request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return domain.NotifyResult{Error: fmt.Sprintf("do request: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NotifyResult{Error: "telegram error: " + resp.Status}
	}
	return domain.NotifyResult{Success: true, Message: "Telegram notification sent"}
}
