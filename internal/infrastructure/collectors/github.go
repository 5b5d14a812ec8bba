package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/domain"
)

const maxReleases = 10

// GitHubAdapter lists recent releases of one repository.
type GitHubAdapter struct {
	repo    string
	apiBase string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

type release struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	TagName     string `json:"tag_name"`
	Body        string `json:"body"`
	HTMLURL     string `json:"html_url"`
	Prerelease  bool   `json:"prerelease"`
	PublishedAt string `json:"published_at"`
}

// NewGitHubAdapter uses config.repo, falling back to the locator ("owner/repo").
func NewGitHubAdapter(src domain.Source, settings Settings) (*GitHubAdapter, error) {
	settings = settings.withDefaults()
	repo := strings.Trim(collector.Options(src.Config).String("repo", src.Locator), "/ ")
	if repo == "" || !strings.Contains(repo, "/") {
		return nil, fmt.Errorf("%w: github source %s needs owner/repo, got %q", domain.ErrMisconfigured, src.ID, repo)
	}
	return &GitHubAdapter{
		repo:    repo,
		apiBase: strings.TrimRight(settings.GitHubAPI, "/"),
		token:   settings.GitHubToken,
		client:  settings.Client,
		logger:  settings.Logger.With("adapter", string(domain.KindGitHub), "repo", repo),
	}, nil
}

// SourceKind implements collector.Adapter.
func (g *GitHubAdapter) SourceKind() string {
	return string(domain.KindGitHub)
}

// Collect returns up to ten releases. A missing repository yields no items.
func (g *GitHubAdapter) Collect(ctx context.Context) ([]domain.CollectedItem, error) {
	req, err := newRequest(ctx, fmt.Sprintf("%s/repos/%s/releases", g.apiBase, g.repo))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		g.logger.Debug("repository not found")
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("releases %s: %w", g.repo, statusError(resp))
	}

	var releases []release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("decode releases: %w", err)
	}
	if len(releases) > maxReleases {
		releases = releases[:maxReleases]
	}

	items := make([]domain.CollectedItem, 0, len(releases))
	for _, r := range releases {
		items = append(items, g.releaseItem(r))
	}
	return items, nil
}

func (g *GitHubAdapter) releaseItem(r release) domain.CollectedItem {
	name := r.Name
	if name == "" {
		name = r.TagName
	}
	meta := map[string]any{
		"repo":       g.repo,
		"tag":        r.TagName,
		"prerelease": r.Prerelease,
		"type":       "release",
	}

	item := domain.CollectedItem{
		ExternalID: fmt.Sprintf("github:%s:release:%d", g.repo, r.ID),
		Title:      fmt.Sprintf("[%s] %s", g.repo, name),
		Content:    r.Body,
		URL:        r.HTMLURL,
		Metadata:   meta,
	}
	if published, err := time.Parse(time.RFC3339, r.PublishedAt); err == nil {
		item.CollectedAt = published.UTC()
		meta[domain.MetaPublishedAt] = item.CollectedAt.Format(time.RFC3339)
	}
	return item
}
