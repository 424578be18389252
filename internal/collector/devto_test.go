package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDevToCollectFiltersByReactions(t *testing.T) {
	published := time.Now().Add(-3 * time.Hour).Format(time.RFC3339)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tag"); got != "javascript" {
			t.Errorf("tag query = %q, want javascript", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.forem.api-v1+json" {
			t.Errorf("Accept = %q", got)
		}
		fmt.Fprintf(w, `[
  {"title":"Popular","url":"https://dev.to/a","public_reactions_count":42,"published_at":%q,"tag_list":["javascript","webdev"],"description":"good"},
  {"title":"Ignored","url":"https://dev.to/b","public_reactions_count":2,"published_at":%q,"tag_list":[]}
]`, published, published)
	}))
	defer srv.Close()

	c := &DevTo{
		APIURL:       srv.URL,
		Tags:         []string{"javascript"},
		MinReactions: 10,
		Client:       srv.Client(),
		Retrier:      testRetrier(),
	}
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("collected %d items, want 1", len(items))
	}
	it := items[0]
	if it.Title != "Popular" || it.Score == nil || *it.Score != 42 {
		t.Errorf("item = %+v", it)
	}
	if len(it.Tags) != 2 || it.Tags[0] != "javascript" {
		t.Errorf("tags = %v", it.Tags)
	}
}

func TestDevToCollectRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := &DevTo{
		APIURL:       srv.URL,
		Tags:         []string{"react"},
		MinReactions: 10,
		Client:       srv.Client(),
		Retrier:      testRetrier3(),
	}
	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatalf("Collect error after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2", calls)
	}
}
