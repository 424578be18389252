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

// DevTo collects top articles for a set of tags.
type DevTo struct {
	APIURL       string
	Tags         []string
	MinReactions int
	Client       *http.Client
	Retrier      retry.Policy
}

func (d *DevTo) Name() string { return "devto" }

func (d *DevTo) Collect(ctx context.Context) ([]model.NewsItem, error) {
	var items []model.NewsItem
	var lastErr error
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		articles, err := d.fetchTag(ctx, tag)
		if err != nil {
			slog.Error("devto: tag fetch failed", "tag", tag, "err", err)
			lastErr = err
			continue
		}
		items = append(items, articles...)
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	slog.Info("devto: collected articles", "count", len(items))
	return items, nil
}

type devtoArticle struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Reactions   int      `json:"public_reactions_count"`
	PublishedAt string   `json:"published_at"`
	TagList     []string `json:"tag_list"`
}

func (d *DevTo) fetchTag(ctx context.Context, tag string) ([]model.NewsItem, error) {
	url := fmt.Sprintf("%s/articles?tag=%s&per_page=10&top=1", strings.TrimRight(d.APIURL, "/"), tag)
	body, err := getBody(ctx, d.Client, d.Retrier, "devto "+tag, url, map[string]string{
		"Accept": "application/vnd.forem.api-v1+json",
	})
	if err != nil {
		return nil, err
	}
	var articles []devtoArticle
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, fmt.Errorf("devto %s: decode: %w", tag, err)
	}
	var items []model.NewsItem
	for _, a := range articles {
		if a.Reactions < d.MinReactions || a.Title == "" || a.URL == "" {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			publishedAt = time.Now()
		}
		items = append(items, model.NewsItem{
			Title:       a.Title,
			URL:         a.URL,
			Source:      model.SourceDevTo,
			Category:    "Article",
			Score:       intPtr(a.Reactions),
			PublishedAt: publishedAt,
			Description: a.Description,
			Tags:        a.TagList,
		})
	}
	return items, nil
}
