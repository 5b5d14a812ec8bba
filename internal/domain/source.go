package domain

import "time"

// SourceKind names an adapter implementation.
type SourceKind string

const (
	KindFeed    SourceKind = "rss"
	KindWeb     SourceKind = "web"
	KindGitHub  SourceKind = "github"
	KindTwitter SourceKind = "twitter"
)

// Topic groups sources and supplies keyword context for scoring.
type Topic struct {
	ID       string
	Name     string
	Keywords []string
	Active   bool
}

// Source is one configured content origin.
type Source struct {
	ID              string
	TopicID         string
	Kind            SourceKind
	Locator         string
	Config          map[string]any
	Active          bool
	LastCollectedAt *time.Time
	// ConfigErr is set when the stored config could not be decoded. The
	// source is still listed so collection can report it per source.
	ConfigErr error
}

// SourceOutcome reports what a single source produced during collection.
type SourceOutcome struct {
	SourceID  string `json:"source_id"`
	Kind      string `json:"kind"`
	Collected int    `json:"collected"`
	Saved     int    `json:"saved"`
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
}

// Failed reports whether the source could not be collected.
func (o SourceOutcome) Failed() bool {
	return o.Err != nil
}
