package collectors

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/domain"
)

// Selectors pick item blocks and their fields out of a page.
type Selectors struct {
	Items   string
	Title   string
	Content string
	Link    string
}

// DefaultSelectors match a typical blog listing.
var DefaultSelectors = Selectors{Items: "article", Title: "h2", Content: "p", Link: "a"}

// WebAdapter scrapes an HTML page with CSS selectors.
type WebAdapter struct {
	url       string
	selectors Selectors
	client    *http.Client
	logger    *slog.Logger
}

// NewWebAdapter builds a scraper; config.selectors overrides individual defaults.
func NewWebAdapter(src domain.Source, settings Settings) (*WebAdapter, error) {
	settings = settings.withDefaults()
	if src.Locator == "" {
		return nil, fmt.Errorf("%w: web source %s has no url", domain.ErrMisconfigured, src.ID)
	}

	sel := DefaultSelectors
	custom := collector.Options(src.Config).Map("selectors")
	if v := custom["items"]; v != "" {
		sel.Items = v
	}
	if v := custom["title"]; v != "" {
		sel.Title = v
	}
	if v := custom["content"]; v != "" {
		sel.Content = v
	}
	if v := custom["link"]; v != "" {
		sel.Link = v
	}

	return &WebAdapter{
		url:       src.Locator,
		selectors: sel,
		client:    settings.Client,
		logger:    settings.Logger.With("adapter", string(domain.KindWeb), "source_id", src.ID),
	}, nil
}

// SourceKind implements collector.Adapter.
func (w *WebAdapter) SourceKind() string {
	return string(domain.KindWeb)
}

// Collect downloads the page and extracts one item per matched block.
func (w *WebAdapter) Collect(ctx context.Context) ([]domain.CollectedItem, error) {
	doc, err := w.fetchDocument(ctx)
	if err != nil {
		return nil, err
	}

	var items []domain.CollectedItem
	doc.Find(w.selectors.Items).Each(func(_ int, el *goquery.Selection) {
		items = append(items, w.parseBlock(el))
	})
	w.logger.Debug("page scraped", "items", len(items))
	return items, nil
}

func (w *WebAdapter) fetchDocument(ctx context.Context) (*goquery.Document, error) {
	req, err := newRequest(ctx, w.url)
	if err != nil {
		return nil, err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("page %s: %w", w.url, statusError(resp))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (w *WebAdapter) parseBlock(el *goquery.Selection) domain.CollectedItem {
	title := strings.TrimSpace(el.Find(w.selectors.Title).First().Text())
	if title == "" {
		title = "Untitled"
	}
	content := strings.TrimSpace(el.Find(w.selectors.Content).First().Text())

	link, _ := el.Find(w.selectors.Link).First().Attr("href")
	link = resolveLink(w.url, link)

	return domain.CollectedItem{
		ExternalID: webExternalID(w.url, title),
		Title:      title,
		Content:    content,
		URL:        link,
		Metadata:   map[string]any{"source_url": w.url},
	}
}

// resolveLink joins a relative href onto the page URL by plain concatenation.
func resolveLink(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}

// webExternalID is stable per (page, title); two blocks sharing a title collide.
func webExternalID(pageURL, title string) string {
	sum := md5.Sum([]byte(pageURL + ":" + title))
	return hex.EncodeToString(sum[:])
}
