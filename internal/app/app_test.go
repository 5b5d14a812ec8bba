package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
)

const feedXML = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>News</title>
<item><guid>post-1</guid><title>Cursor ships background tasks</title>
<link>https://example.com/post-1</link>
<description>cursor %s</description>
<pubDate>%s</pubDate></item>
</channel></rss>`

func testConfig(t *testing.T) config.Config {
	t.Helper()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = io.WriteString(w, strings.Replace(strings.Replace(feedXML, "%s", strings.Repeat("x", 250), 1),
			"%s", time.Now().UTC().Add(-time.Hour).Format(time.RFC1123Z), 1))
	}))
	t.Cleanup(feed.Close)

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"recommendation": "recommend", "summary": "Worth a look."}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(llmSrv.Close)

	cfg, err := config.Parse([]byte(`
database:
  driver: sqlite
  dsn: ":memory:"
notifications:
  channel: log
`))
	require.NoError(t, err)
	cfg.LLM.Endpoint = llmSrv.URL
	cfg.LLM.APIKey = "test"
	cfg.Topics = []config.TopicConfig{{
		Name:     "vibecoding",
		Keywords: []string{"cursor"},
		Sources:  []config.SourceConfig{{Kind: "RSS", Locator: feed.URL}},
	}}
	cfg.Principles = []config.PrincipleConfig{{Content: "Prefer terminal tools", Category: "workflow"}}
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSeedsIdempotently(t *testing.T) {
	ctx := context.Background()
	application, err := New(ctx, testConfig(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	require.NoError(t, application.seed(ctx))

	topic, err := application.store.GetTopicByName(ctx, "vibecoding")
	require.NoError(t, err)
	assert.Equal(t, []string{"cursor"}, topic.Keywords)

	sources, err := application.store.ListActiveSources(ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, domain.KindFeed, sources[0].Kind)

	principles, err := application.store.ListActivePrinciples(ctx, 10)
	require.NoError(t, err)
	require.Len(t, principles, 1)
	assert.Equal(t, 0.5, principles[0].Confidence)
}

func TestSeedKeepsLearnedConfidence(t *testing.T) {
	ctx := context.Background()
	application, err := New(ctx, testConfig(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	principles, err := application.store.ListActivePrinciples(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, application.store.UpdateConfidence(ctx, principles[0].ID, 0.9))

	require.NoError(t, application.seed(ctx))
	got, err := application.store.GetPrinciple(ctx, principles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Confidence)
}

func TestRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	application, err := New(ctx, testConfig(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	res := application.Run(ctx, "")
	require.True(t, res.Success, res.Errors)
	assert.Equal(t, 1, res.Stages[domain.StageCollect].Counts["saved"])
	assert.Equal(t, 1, res.Stages[domain.StageQualityFilter].Counts["passed_items"])
	assert.Equal(t, 1, res.Stages[domain.StageProcess].Counts["processed_count"])
	assert.Equal(t, 1, res.Stages[domain.StageReports].Counts["reports_created"])
	assert.Equal(t, 1, res.Stages[domain.StageNotify].Counts["notifications_sent"])

	n, err := application.Reprocess(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	summary, err := application.WeeklySummary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportBestPractice, summary.Report.Type)
}

func TestRunWithoutAnalyzerFailsProcessStage(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.LLM.APIKey = ""
	application, err := New(ctx, cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	res := application.Run(ctx, "")
	assert.False(t, res.Success)
	assert.False(t, res.Stages[domain.StageProcess].Success)
	assert.True(t, res.Stages[domain.StageCollect].Success)
}
