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

// GitHub collects recent releases for a watch list of repositories, then
// trending repositories created within the collection window. Both fetches
// run sequentially inside one Collect call.
type GitHub struct {
	APIURL          string
	Repos           []string // owner/name
	MinStars        int
	CollectionHours int
	Client          *http.Client
	Retrier         retry.Policy
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) Collect(ctx context.Context) ([]model.NewsItem, error) {
	items := g.collectReleases(ctx)
	trending, err := g.collectTrending(ctx)
	if err != nil {
		// releases may still have produced items; keep them
		slog.Error("github: trending fetch failed", "err", err)
		if len(items) == 0 {
			return nil, err
		}
		return items, nil
	}
	return append(items, trending...), nil
}

type githubRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	Body        string    `json:"body"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

func (g *GitHub) collectReleases(ctx context.Context) []model.NewsItem {
	cutoff := time.Now().Add(-time.Duration(g.CollectionHours) * time.Hour)
	var items []model.NewsItem
	for _, repo := range g.Repos {
		repo = strings.TrimSpace(repo)
		if repo == "" {
			continue
		}
		url := fmt.Sprintf("%s/repos/%s/releases?per_page=5", strings.TrimRight(g.APIURL, "/"), repo)
		body, err := getBody(ctx, g.Client, g.Retrier, "github releases", url, map[string]string{
			"Accept": "application/vnd.github.v3+json",
		})
		if err != nil {
			slog.Error("github: releases fetch failed", "repo", repo, "err", err)
			continue
		}
		var releases []githubRelease
		if err := json.Unmarshal(body, &releases); err != nil {
			slog.Error("github: releases decode failed", "repo", repo, "err", err)
			continue
		}
		for _, r := range releases {
			if r.Draft || r.Prerelease || r.PublishedAt.Before(cutoff) {
				continue
			}
			title := r.Name
			if strings.TrimSpace(title) == "" {
				title = r.TagName
			}
			items = append(items, model.NewsItem{
				Title:       fmt.Sprintf("%s %s", repo, title),
				URL:         r.HTMLURL,
				Source:      model.SourceGitHub,
				Category:    "Release",
				PublishedAt: r.PublishedAt,
				Description: truncate(stripHTML(r.Body), 200),
			})
		}
	}
	slog.Info("github: collected releases", "count", len(items))
	return items
}

type githubSearchResponse struct {
	Items []struct {
		FullName    string    `json:"full_name"`
		Description string    `json:"description"`
		HTMLURL     string    `json:"html_url"`
		Stargazers  int       `json:"stargazers_count"`
		CreatedAt   time.Time `json:"created_at"`
	} `json:"items"`
}

func (g *GitHub) collectTrending(ctx context.Context) ([]model.NewsItem, error) {
	days := (g.CollectionHours + 23) / 24
	cutoff := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	url := fmt.Sprintf(
		"%s/search/repositories?q=language:javascript+language:typescript+created:>%s&sort=stars&order=desc&per_page=10",
		strings.TrimRight(g.APIURL, "/"), cutoff,
	)
	body, err := getBody(ctx, g.Client, g.Retrier, "github trending", url, map[string]string{
		"Accept": "application/vnd.github.v3+json",
	})
	if err != nil {
		return nil, err
	}
	var resp githubSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("github trending: decode: %w", err)
	}
	var items []model.NewsItem
	for _, r := range resp.Items {
		if r.Stargazers < g.MinStars {
			continue
		}
		items = append(items, model.NewsItem{
			Title:       r.FullName,
			URL:         r.HTMLURL,
			Source:      model.SourceGitHub,
			Category:    "Trending",
			Score:       intPtr(r.Stargazers),
			PublishedAt: r.CreatedAt,
			Description: r.Description,
		})
	}
	slog.Info("github: collected trending repos", "count", len(items))
	return items, nil
}
