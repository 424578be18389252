package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codebrief/internal/model"
	"codebrief/internal/retry"
)

// Reddit collects top posts from a set of subreddits.
type Reddit struct {
	APIURL     string
	Subreddits []string
	MinUpvotes int
	TimeFilter string // hour/day/week
	Client     *http.Client
	Retrier    retry.Policy
}

func (r *Reddit) Name() string { return "reddit" }

func (r *Reddit) Collect(ctx context.Context) ([]model.NewsItem, error) {
	var items []model.NewsItem
	var lastErr error
	for _, sub := range r.Subreddits {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		posts, err := r.fetchSubreddit(ctx, sub)
		if err != nil {
			slog.Error("reddit: subreddit fetch failed", "subreddit", sub, "err", err)
			lastErr = err
			continue
		}
		items = append(items, posts...)
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	slog.Info("reddit: collected posts", "count", len(items))
	return items, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Permalink  string  `json:"permalink"`
				Ups        int     `json:"ups"`
				CreatedUTC float64 `json:"created_utc"`
				Selftext   string  `json:"selftext"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) fetchSubreddit(ctx context.Context, sub string) ([]model.NewsItem, error) {
	url := fmt.Sprintf("%s/r/%s/top.json?t=%s&limit=10", strings.TrimRight(r.APIURL, "/"), sub, r.TimeFilter)
	body, err := getBody(ctx, r.Client, r.Retrier, "reddit "+sub, url, map[string]string{
		"User-Agent": "CodeBrief/1.0",
	})
	if err != nil {
		return nil, err
	}
	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("reddit %s: decode: %w", sub, err)
	}
	var items []model.NewsItem
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Ups < r.MinUpvotes || post.Title == "" || post.Permalink == "" {
			continue
		}
		items = append(items, model.NewsItem{
			Title:       post.Title,
			URL:         "https://www.reddit.com" + post.Permalink,
			Source:      model.SourceReddit,
			Category:    "r/" + sub,
			Score:       intPtr(post.Ups),
			PublishedAt: time.Unix(int64(post.CreatedUTC), 0),
			Description: truncate(stripHTML(post.Selftext), 200),
		})
	}
	return items, nil
}
