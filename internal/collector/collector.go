package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"codebrief/internal/model"
	"codebrief/internal/retry"
)

// Collector fetches and normalizes items from one external source. Collect
// applies its own request-level retries and timeouts; a failed source
// returns an error and never panics the batch.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]model.NewsItem, error)
}

// getBody performs a retried GET and returns the response body. A non-2xx
// status is an error so the retry policy sees it.
func getBody(ctx context.Context, client *http.Client, retrier retry.Policy, name, url string, headers map[string]string) ([]byte, error) {
	return retry.DoValue(ctx, retrier, name, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%s: status %d", name, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`) // best-effort removal

// stripHTML removes tags and a few common entities from feed/descriptions.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = htmlTagRe.ReplaceAllString(s, "")
	replacer := strings.NewReplacer(
		"&quot;", "\"",
		"&apos;", "'",
		"&#39;", "'",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&nbsp;", " ",
	)
	return strings.TrimSpace(replacer.Replace(s))
}

// truncate shortens s to at most limit runes, appending an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}

func intPtr(n int) *int { return &n }
