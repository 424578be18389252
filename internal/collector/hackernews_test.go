package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHNFrontendRelated(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{title: "React Server Components explained", want: true},
		{title: "The state of CSS in 2025", want: true},
		{title: "TypeScript 6.0 beta", want: true},
		{title: "Show HN: My homemade telescope", want: false},
		{title: "Postgres internals deep dive", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := hnFrontendRelated(tt.title); got != tt.want {
				t.Errorf("hnFrontendRelated(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestHackerNewsCollect(t *testing.T) {
	now := time.Now().Unix()
	stories := map[string]string{
		// frontend keyword, modest score: kept
		"1": fmt.Sprintf(`{"type":"story","title":"New browser API","url":"https://example.com/1","score":150,"time":%d}`, now),
		// no keyword, below the 200 bar: dropped
		"2": fmt.Sprintf(`{"type":"story","title":"Farming at scale","url":"https://example.com/2","score":150,"time":%d}`, now),
		// no keyword but very popular: kept
		"3": fmt.Sprintf(`{"type":"story","title":"Quantum computing update","url":"https://example.com/3","score":450,"time":%d}`, now),
		// below min score: dropped
		"4": fmt.Sprintf(`{"type":"story","title":"CSS micro tip","url":"https://example.com/4","score":20,"time":%d}`, now),
		// job posting: dropped
		"5": fmt.Sprintf(`{"type":"job","title":"Hiring web engineers","url":"https://example.com/5","score":300,"time":%d}`, now),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/topstories.json" {
			fmt.Fprint(w, `[1,2,3,4,5]`)
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/item/"), ".json")
		if body, ok := stories[id]; ok {
			fmt.Fprint(w, body)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := &HackerNews{
		APIURL:     srv.URL,
		MinScore:   100,
		MaxStories: 30,
		Client:     srv.Client(),
		Retrier:    testRetrier(),
	}
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("collected %d items, want 2: %+v", len(items), items)
	}
	if items[0].Title != "New browser API" || items[1].Title != "Quantum computing update" {
		t.Errorf("items = %q, %q", items[0].Title, items[1].Title)
	}
	for _, it := range items {
		if it.Category != "Top Story" || it.Score == nil {
			t.Errorf("item missing category/score: %+v", it)
		}
	}
}

func TestHackerNewsCollectStopsAtMaxStories(t *testing.T) {
	now := time.Now().Unix()
	itemCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/topstories.json" {
			fmt.Fprint(w, `[1,2,3,4,5,6,7,8,9,10]`)
			return
		}
		itemCalls++
		fmt.Fprintf(w, `{"type":"story","title":"Offtopic","url":"https://example.com/x","score":150,"time":%d}`, now)
	}))
	defer srv.Close()

	c := &HackerNews{
		APIURL:     srv.URL,
		MinScore:   100,
		MaxStories: 3,
		Client:     srv.Client(),
		Retrier:    testRetrier(),
	}
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if itemCalls != 3 {
		t.Errorf("item endpoint called %d times, want 3", itemCalls)
	}
	if len(items) != 0 {
		t.Errorf("collected %d items, want 0 (all filtered)", len(items))
	}
}
