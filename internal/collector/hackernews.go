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

// frontend-adjacent keywords; a story missing all of them must clear the
// high-score bar instead.
var hnKeywords = []string{
	"javascript", "react", "vue", "angular", "frontend",
	"css", "web", "browser", "typescript", "node",
}

// HackerNews collects top stories, keeping those that are either
// frontend-related or broadly popular.
type HackerNews struct {
	APIURL     string
	MinScore   int
	MaxStories int // how many top-story IDs to inspect
	Client     *http.Client
	Retrier    retry.Policy
}

func (h *HackerNews) Name() string { return "hackernews" }

func (h *HackerNews) Collect(ctx context.Context) ([]model.NewsItem, error) {
	base := strings.TrimRight(h.APIURL, "/")
	body, err := getBody(ctx, h.Client, h.Retrier, "hackernews topstories", base+"/topstories.json", nil)
	if err != nil {
		return nil, err
	}
	var ids []int
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("hackernews: decode ids: %w", err)
	}

	var items []model.NewsItem
	checked := 0
	for _, id := range ids {
		if checked >= h.MaxStories || len(items) >= 10 {
			break
		}
		item, err := h.fetchStory(ctx, id)
		if err != nil {
			slog.Warn("hackernews: story fetch failed", "id", id, "err", err)
			continue
		}
		checked++
		if item != nil {
			items = append(items, *item)
		}
	}
	slog.Info("hackernews: collected stories", "count", len(items))
	return items, nil
}

type hnStory struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Time  int64  `json:"time"`
}

// fetchStory returns nil without error for stories that fail the filters.
func (h *HackerNews) fetchStory(ctx context.Context, id int) (*model.NewsItem, error) {
	url := fmt.Sprintf("%s/item/%d.json", strings.TrimRight(h.APIURL, "/"), id)
	body, err := getBody(ctx, h.Client, h.Retrier, "hackernews item", url, nil)
	if err != nil {
		return nil, err
	}
	var story hnStory
	if err := json.Unmarshal(body, &story); err != nil {
		return nil, fmt.Errorf("hackernews: decode item %d: %w", id, err)
	}
	if story.Type != "story" || story.URL == "" || story.Title == "" {
		return nil, nil
	}
	if story.Score < h.MinScore {
		return nil, nil
	}
	if !hnFrontendRelated(story.Title) && story.Score < 200 {
		return nil, nil
	}
	return &model.NewsItem{
		Title:       story.Title,
		URL:         story.URL,
		Source:      model.SourceHackerNews,
		Category:    "Top Story",
		Score:       intPtr(story.Score),
		PublishedAt: time.Unix(story.Time, 0),
	}, nil
}

func hnFrontendRelated(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range hnKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
