package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Slack posts actions to an incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
}

var _ ports.Notifier = (*Slack)(nil)

// NewSlack wires the webhook URL; a nil client gets the default timeout.
func NewSlack(webhookURL string, client *http.Client) *Slack {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Slack{webhookURL: webhookURL, client: client}
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func slackPayload(action domain.Action) slackMessage {
	return slackMessage{
		Text: fmt.Sprintf("*%s*\n%s", action.Title, action.Description),
		Blocks: []slackBlock{
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: "*New Action:* " + action.Title}},
			{Type: "section", Fields: []slackText{
				{Type: "mrkdwn", Text: "*Priority:* " + action.Priority},
				{Type: "mrkdwn", Text: "*Type:* " + action.Type},
			}},
		},
	}
}

// Send posts one action. Only a 200 response counts as delivered.
func (s *Slack) Send(ctx context.Context, action domain.Action) domain.NotifyResult {
	if s.webhookURL == "" {
		return domain.NotifyResult{Error: "Slack webhook not configured"}
	}

	body, err := json.Marshal(slackPayload(action))
	if err != nil {
		return domain.NotifyResult{Error: fmt.Sprintf("marshal slack message: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return domain.NotifyResult{Error: fmt.Sprintf("new request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.NotifyResult{Error: fmt.Sprintf("do request: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NotifyResult{Error: fmt.Sprintf("Slack error: %d", resp.StatusCode)}
	}
	return domain.NotifyResult{Success: true, Message: "Slack notification sent"}
}
