// Package collectors holds the concrete source adapters: syndication feeds,
// scraped web pages, repository releases and social search.
package collectors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/domain"
)

const (
	userAgent = "ContentCurator/1.0"

	// DefaultTimeout bounds every outbound adapter request.
	DefaultTimeout = 30 * time.Second

	DefaultGitHubAPI = "https://api.github.com"
	DefaultSocialAPI = "https://twitter154.p.rapidapi.com"
)

// Settings carries the shared dependencies handed to every adapter factory.
type Settings struct {
	Client      *http.Client
	Timeout     time.Duration
	GitHubAPI   string
	GitHubToken string
	SocialAPI   string
	RapidAPIKey string
	Logger      *slog.Logger
	Now         func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Client == nil {
		s.Client = &http.Client{Timeout: s.Timeout}
	}
	if s.GitHubAPI == "" {
		s.GitHubAPI = DefaultGitHubAPI
	}
	if s.SocialAPI == "" {
		s.SocialAPI = DefaultSocialAPI
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// Register installs the factories for every built-in source kind.
func Register(reg *collector.Registry, settings Settings) {
	settings = settings.withDefaults()

	reg.Register(domain.KindFeed, func(src domain.Source) (collector.Adapter, error) {
		return NewFeedAdapter(src, settings)
	})
	reg.Register(domain.KindWeb, func(src domain.Source) (collector.Adapter, error) {
		return NewWebAdapter(src, settings)
	})
	reg.Register(domain.KindGitHub, func(src domain.Source) (collector.Adapter, error) {
		return NewGitHubAdapter(src, settings)
	})
	reg.Register(domain.KindTwitter, func(src domain.Source) (collector.Adapter, error) {
		return NewSocialAdapter(src, settings)
	})
}

func newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func statusError(resp *http.Response) error {
	return fmt.Errorf("unexpected status %s", resp.Status)
}
