package model

import (
	"strings"
	"time"
)

// Source identifies where a news item came from. The set is open: collectors
// may introduce new values without touching this package.
type Source string

const (
	SourceGitHub     Source = "GitHub"
	SourceReddit     Source = "Reddit"
	SourceHackerNews Source = "HackerNews"
	SourceDevTo      Source = "DevTo"
	SourceRSS        Source = "RSS"
	SourceNpm        Source = "npm"
)

// Emoji returns the marker used when rendering an item for chat delivery.
func (s Source) Emoji() string {
	switch strings.ToLower(string(s)) {
	case "github":
		return "🐙"
	case "reddit":
		return "🤖"
	case "hackernews":
		return "📰"
	case "devto":
		return "✍️"
	case "rss":
		return "📡"
	case "npm":
		return "📦"
	default:
		return "📌"
	}
}

// NewsItem is one collected item. Collectors create items and never mutate
// them afterward; Title and URL are always non-empty for items that leave a
// collector.
type NewsItem struct {
	Title       string    `json:"title" yaml:"title"`
	URL         string    `json:"url" yaml:"url"`
	Source      Source    `json:"source" yaml:"source"`
	Category    string    `json:"category" yaml:"category"`
	Score       *int      `json:"score,omitempty" yaml:"score,omitempty"` // nil when the source has no popularity signal
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Digest is the ranked grouping of one run's items. It is built exactly once
// per run; the buckets reference the same NewsItem values the aggregator
// produced.
type Digest struct {
	Date          string     `json:"date" yaml:"date"`
	TopUpdates    []NewsItem `json:"top_updates" yaml:"top_updates"`
	QuickMentions []NewsItem `json:"quick_mentions" yaml:"quick_mentions"`
	CommunityBuzz []NewsItem `json:"community_buzz" yaml:"community_buzz"`
}

// Empty reports whether all three buckets are empty.
func (d Digest) Empty() bool {
	return len(d.TopUpdates) == 0 && len(d.QuickMentions) == 0 && len(d.CommunityBuzz) == 0
}
