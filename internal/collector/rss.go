package collector

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codebrief/internal/model"
	"codebrief/internal/retry"
)

// RSS collects recent entries from a set of RSS 2.0 or Atom feeds.
type RSS struct {
	Feeds           []string
	CollectionHours int
	Client          *http.Client
	Retrier         retry.Policy
}

func (r *RSS) Name() string { return "rss" }

func (r *RSS) Collect(ctx context.Context) ([]model.NewsItem, error) {
	cutoff := time.Now().Add(-time.Duration(r.CollectionHours) * time.Hour)
	var items []model.NewsItem
	var lastErr error
	for _, feedURL := range r.Feeds {
		feedURL = strings.TrimSpace(feedURL)
		if feedURL == "" {
			continue
		}
		entries, err := r.fetchFeed(ctx, feedURL, cutoff)
		if err != nil {
			slog.Error("rss: feed fetch failed", "feed", feedURL, "err", err)
			lastErr = err
			continue
		}
		items = append(items, entries...)
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	slog.Info("rss: collected articles", "count", len(items))
	return items, nil
}

// rssFeed covers both <rss><channel> documents and Atom <feed> documents;
// only one of Channel/AtomEntries is populated per parse.
type rssFeed struct {
	Channel *struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
	Title       string      `xml:"title"`
	AtomEntries []atomEntry `xml:"entry"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type atomEntry struct {
	Title string `xml:"title"`
	Links []struct {
		Rel  string `xml:"rel,attr"`
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Summary   string `xml:"summary"`
	Content   string `xml:"content"`
	Updated   string `xml:"updated"`
	Published string `xml:"published"`
}

func (r *RSS) fetchFeed(ctx context.Context, feedURL string, cutoff time.Time) ([]model.NewsItem, error) {
	body, err := getBody(ctx, r.Client, r.Retrier, "rss feed", feedURL, nil)
	if err != nil {
		return nil, err
	}
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("rss %s: parse: %w", feedURL, err)
	}

	var items []model.NewsItem
	if feed.Channel != nil {
		for _, it := range feed.Channel.Items {
			publishedAt := parseFeedTime(it.PubDate)
			if publishedAt.Before(cutoff) || it.Title == "" || it.Link == "" {
				continue
			}
			items = append(items, model.NewsItem{
				Title:       it.Title,
				URL:         it.Link,
				Source:      model.SourceRSS,
				Category:    feed.Channel.Title,
				PublishedAt: publishedAt,
				Description: truncate(stripHTML(it.Description), 200),
			})
		}
		return items, nil
	}
	for _, e := range feed.AtomEntries {
		link := atomLink(e)
		ts := e.Published
		if ts == "" {
			ts = e.Updated
		}
		publishedAt := parseFeedTime(ts)
		if publishedAt.Before(cutoff) || e.Title == "" || link == "" {
			continue
		}
		desc := e.Summary
		if desc == "" {
			desc = e.Content
		}
		items = append(items, model.NewsItem{
			Title:       e.Title,
			URL:         link,
			Source:      model.SourceRSS,
			Category:    feed.Title,
			PublishedAt: publishedAt,
			Description: truncate(stripHTML(desc), 200),
		})
	}
	return items, nil
}

func atomLink(e atomEntry) string {
	for _, l := range e.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}

var feedTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
}

// parseFeedTime tries the common feed date layouts; an unparseable date
// counts as "now" so the entry is not silently dropped.
func parseFeedTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
