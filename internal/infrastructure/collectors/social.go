package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/domain"
)

const (
	defaultMaxResults = 50
	maxTitleRunes     = 100
)

// SocialAdapter runs a keyword search against the RapidAPI Twitter proxy.
type SocialAdapter struct {
	query          string
	maxResults     int
	minLikes       int
	includeReplies bool
	apiBase        string
	apiKey         string
	client         *http.Client
	logger         *slog.Logger
}

type searchResponse struct {
	Results []tweet `json:"results"`
}

type tweet struct {
	TweetID       any    `json:"tweet_id"`
	CreationDate  string `json:"creation_date"`
	Text          string `json:"text"`
	FavoriteCount int    `json:"favorite_count"`
	RetweetCount  int    `json:"retweet_count"`
	ReplyCount    int    `json:"reply_count"`
	InReplyTo     any    `json:"in_reply_to_status_id"`
	User          struct {
		Username      string `json:"username"`
		FollowerCount int    `json:"follower_count"`
	} `json:"user"`
}

// NewSocialAdapter reads query, max_results, min_likes and include_replies from config.
func NewSocialAdapter(src domain.Source, settings Settings) (*SocialAdapter, error) {
	settings = settings.withDefaults()
	opts := collector.Options(src.Config)
	maxResults := opts.Int("max_results", defaultMaxResults)
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &SocialAdapter{
		query:          strings.TrimSpace(opts.String("query", "")),
		maxResults:     maxResults,
		minLikes:       opts.Int("min_likes", 0),
		includeReplies: opts.Bool("include_replies", false),
		apiBase:        strings.TrimRight(settings.SocialAPI, "/"),
		apiKey:         settings.RapidAPIKey,
		client:         settings.Client,
		logger:         settings.Logger.With("adapter", string(domain.KindTwitter), "source_id", src.ID),
	}, nil
}

// SourceKind implements collector.Adapter.
func (s *SocialAdapter) SourceKind() string {
	return string(domain.KindTwitter)
}

// Collect searches recent posts. Missing credentials, an empty query and rate
// limiting all produce an empty result rather than an error.
func (s *SocialAdapter) Collect(ctx context.Context) ([]domain.CollectedItem, error) {
	if s.apiKey == "" {
		s.logger.Warn("rapidapi key not configured, skipping")
		return nil, nil
	}
	if s.query == "" {
		s.logger.Warn("no query configured, skipping")
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", s.query)
	params.Set("section", "latest")
	params.Set("limit", strconv.Itoa(s.maxResults))

	req, err := newRequest(ctx, s.apiBase+"/search/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	if u, err := url.Parse(s.apiBase); err == nil {
		req.Header.Set("X-RapidAPI-Host", u.Host)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		s.logger.Warn("rate limited, will retry on next run")
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("search %q: %w", s.query, statusError(resp))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload searchResponse
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}

	items := make([]domain.CollectedItem, 0, len(payload.Results))
	for _, t := range payload.Results {
		if t.FavoriteCount < s.minLikes {
			continue
		}
		if !s.includeReplies && present(t.InReplyTo) {
			continue
		}
		items = append(items, tweetItem(t))
	}
	s.logger.Info("posts collected", "query", s.query, "count", len(items))
	return items, nil
}

func tweetItem(t tweet) domain.CollectedItem {
	id := idString(t.TweetID)
	meta := map[string]any{
		domain.MetaLikes:    t.FavoriteCount,
		domain.MetaRetweets: t.RetweetCount,
		"replies":           t.ReplyCount,
		"user":              t.User.Username,
		"user_followers":    t.User.FollowerCount,
		"type":              "tweet",
	}
	if published, ok := parseCreationDate(t.CreationDate); ok {
		meta[domain.MetaPublishedAt] = published.Format(time.RFC3339)
	}

	return domain.CollectedItem{
		ExternalID: "twitter:" + id,
		Title:      truncateRunes(t.Text, maxTitleRunes),
		Content:    t.Text,
		URL:        "https://twitter.com/i/status/" + id,
		Metadata:   meta,
	}
}

func parseCreationDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RubyDate} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case json.Number:
		return t.String() != "0"
	default:
		return true
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
