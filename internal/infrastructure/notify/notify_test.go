package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
)

var sampleAction = domain.Action{
	ID:          "a1",
	Type:        "try",
	Title:       "Try the new tool",
	Description: "Background agents in Cursor.",
	Priority:    domain.PriorityHigh,
}

func TestSlackSend(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res := NewSlack(srv.URL, srv.Client()).Send(context.Background(), sampleAction)
	assert.Equal(t, domain.NotifyResult{Success: true, Message: "Slack notification sent"}, res)

	assert.Equal(t, "*Try the new tool*\nBackground agents in Cursor.", got["text"])
	blocks, ok := got["blocks"].([]any)
	require.True(t, ok)
	require.Len(t, blocks, 2)
	header := blocks[0].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, "*New Action:* Try the new tool", header["text"])
	fields := blocks[1].(map[string]any)["fields"].([]any)
	assert.Equal(t, "*Priority:* high", fields[0].(map[string]any)["text"])
	assert.Equal(t, "*Type:* try", fields[1].(map[string]any)["text"])
}

func TestSlackFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	res := NewSlack(srv.URL, nil).Send(context.Background(), sampleAction)
	assert.False(t, res.Success)
	assert.Equal(t, "Slack error: 202", res.Error)

	res = NewSlack("", nil).Send(context.Background(), sampleAction)
	assert.Equal(t, domain.NotifyResult{Error: "Slack webhook not configured"}, res)
}

func TestTelegramSend(t *testing.T) {
	t.Parallel()

	var form url.Values
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, r.ParseForm())
		form = r.PostForm
	}))
	defer srv.Close()

	n := NewTelegram("token", "42", srv.Client())
	n.baseURL = srv.URL
	res := n.Send(context.Background(), sampleAction)
	assert.True(t, res.Success, res.Error)

	assert.Equal(t, "/bottoken/sendMessage", path)
	assert.Equal(t, "42", form.Get("chat_id"))
	assert.Equal(t, "Markdown", form.Get("parse_mode"))
	assert.Equal(t, "*New Action:* Try the new tool\nBackground agents in Cursor.\n*Priority:* high | *Type:* try", form.Get("text"))

	assert.False(t, NewTelegram("", "42", nil).Send(context.Background(), sampleAction).Success)
}

func TestLogSend(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	res := NewLog(slog.New(slog.NewTextHandler(&buf, nil))).Send(context.Background(), sampleAction)
	assert.True(t, res.Success)
	assert.Contains(t, buf.String(), "action_id=a1")
}

func TestNewPicksChannel(t *testing.T) {
	t.Parallel()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.IsType(t, &Log{}, New(config.NotificationConfig{}, discard))
	assert.IsType(t, &Slack{}, New(config.NotificationConfig{Slack: config.SlackConfig{WebhookURL: "https://x"}}, discard))
	assert.IsType(t, &Telegram{}, New(config.NotificationConfig{Telegram: config.TelegramConfig{BotToken: "t", ChatID: "c"}}, discard))
	assert.IsType(t, &Log{}, New(config.NotificationConfig{
		Channel: "log",
		Slack:   config.SlackConfig{WebhookURL: "https://x"},
	}, discard))
}
