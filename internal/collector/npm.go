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

// Npm collects registry metadata for a watch list of packages, reporting
// only those updated within the collection window. Items carry no score;
// the registry has no popularity signal here.
type Npm struct {
	RegistryURL     string
	Packages        []string
	CollectionHours int
	Client          *http.Client
	Retrier         retry.Policy
}

func (n *Npm) Name() string { return "npm" }

func (n *Npm) Collect(ctx context.Context) ([]model.NewsItem, error) {
	var items []model.NewsItem
	var lastErr error
	for _, pkg := range n.Packages {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" {
			continue
		}
		item, err := n.fetchPackage(ctx, pkg)
		if err != nil {
			slog.Error("npm: package fetch failed", "package", pkg, "err", err)
			lastErr = err
			continue
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	slog.Info("npm: collected package updates", "count", len(items))
	return items, nil
}

type npmPackage struct {
	DistTags    map[string]string `json:"dist-tags"`
	Time        map[string]string `json:"time"`
	Description string            `json:"description"`
	Homepage    string            `json:"homepage"`
}

// fetchPackage returns nil without error for packages outside the window.
func (n *Npm) fetchPackage(ctx context.Context, pkg string) (*model.NewsItem, error) {
	url := fmt.Sprintf("%s/%s", strings.TrimRight(n.RegistryURL, "/"), pkg)
	body, err := getBody(ctx, n.Client, n.Retrier, "npm "+pkg, url, nil)
	if err != nil {
		return nil, err
	}
	var meta npmPackage
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("npm %s: decode: %w", pkg, err)
	}
	latest := meta.DistTags["latest"]
	if latest == "" {
		return nil, fmt.Errorf("npm %s: no latest dist-tag", pkg)
	}
	modified, err := time.Parse(time.RFC3339, meta.Time["modified"])
	if err != nil {
		return nil, fmt.Errorf("npm %s: parse modified time: %w", pkg, err)
	}
	if modified.Before(time.Now().Add(-time.Duration(n.CollectionHours) * time.Hour)) {
		return nil, nil
	}
	homepage := meta.Homepage
	if homepage == "" {
		homepage = "https://www.npmjs.com/package/" + pkg
	}
	return &model.NewsItem{
		Title:       fmt.Sprintf("%s v%s", pkg, latest),
		URL:         homepage,
		Source:      model.SourceNpm,
		Category:    "Package",
		PublishedAt: modified,
		Description: meta.Description,
	}, nil
}
