package collectors

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"ContentCurator/internal/domain"
)

// FeedAdapter reads RSS and Atom documents.
type FeedAdapter struct {
	url    string
	client *http.Client
	parser *gofeed.Parser
	now    func() time.Time
	logger *slog.Logger
}

// NewFeedAdapter builds a feed adapter for the source locator.
func NewFeedAdapter(src domain.Source, settings Settings) (*FeedAdapter, error) {
	settings = settings.withDefaults()
	if src.Locator == "" {
		return nil, fmt.Errorf("%w: feed source %s has no url", domain.ErrMisconfigured, src.ID)
	}
	return &FeedAdapter{
		url:    src.Locator,
		client: settings.Client,
		parser: gofeed.NewParser(),
		now:    settings.Now,
		logger: settings.Logger.With("adapter", string(domain.KindFeed), "source_id", src.ID),
	}, nil
}

// SourceKind implements collector.Adapter.
func (f *FeedAdapter) SourceKind() string {
	return string(domain.KindFeed)
}

// Collect fetches the document and maps each entry to an item.
func (f *FeedAdapter) Collect(ctx context.Context) ([]domain.CollectedItem, error) {
	req, err := newRequest(ctx, f.url)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed %s: %w", f.url, statusError(resp))
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	fetchedAt := f.now().UTC()
	items := make([]domain.CollectedItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		item := feedItem(entry, fetchedAt)
		if item.ExternalID == "" {
			f.logger.Debug("feed entry without guid, link or title skipped")
			continue
		}
		items = append(items, item)
	}
	f.logger.Debug("feed parsed", "entries", len(items))
	return items, nil
}

func feedItem(entry *gofeed.Item, fetchedAt time.Time) domain.CollectedItem {
	externalID := firstNonEmpty(entry.GUID, entry.Link, entry.Title)
	title := entry.Title
	if title == "" {
		title = "Untitled"
	}
	content := entry.Description
	if content == "" {
		content = entry.Content
	}

	tags := make([]string, 0, len(entry.Categories))
	tags = append(tags, entry.Categories...)
	meta := map[string]any{"tags": tags}
	if entry.Author != nil && entry.Author.Name != "" {
		meta["author"] = entry.Author.Name
	}

	collectedAt := fetchedAt
	if entry.PublishedParsed != nil {
		collectedAt = entry.PublishedParsed.UTC()
		meta[domain.MetaPublishedAt] = collectedAt.Format(time.RFC3339)
	}

	return domain.CollectedItem{
		ExternalID:  externalID,
		Title:       title,
		Content:     content,
		URL:         entry.Link,
		Metadata:    meta,
		CollectedAt: collectedAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
