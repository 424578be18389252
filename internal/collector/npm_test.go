package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNpmCollect(t *testing.T) {
	fresh := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	stale := time.Now().Add(-90 * time.Hour).UTC().Format(time.RFC3339)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/react":
			fmt.Fprintf(w, `{"dist-tags":{"latest":"19.2.0"},"time":{"modified":%q},"description":"UI library","homepage":"https://react.dev"}`, fresh)
		case "/vue":
			fmt.Fprintf(w, `{"dist-tags":{"latest":"3.6.0"},"time":{"modified":%q},"description":"The progressive framework"}`, stale)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := &Npm{
		RegistryURL:     srv.URL,
		Packages:        []string{"react", "vue"},
		CollectionHours: 24,
		Client:          srv.Client(),
		Retrier:         testRetrier(),
	}
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("collected %d items, want 1 (stale package outside window)", len(items))
	}
	it := items[0]
	if it.Title != "react v19.2.0" {
		t.Errorf("title = %q", it.Title)
	}
	if it.URL != "https://react.dev" {
		t.Errorf("url = %q, want homepage", it.URL)
	}
	if it.Score != nil {
		t.Error("npm items must not carry a score")
	}
}

func TestNpmCollectDefaultsHomepage(t *testing.T) {
	fresh := time.Now().UTC().Format(time.RFC3339)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"dist-tags":{"latest":"1.0.1"},"time":{"modified":%q}}`, fresh)
	}))
	defer srv.Close()

	c := &Npm{
		RegistryURL:     srv.URL,
		Packages:        []string{"tiny-lib"},
		CollectionHours: 24,
		Client:          srv.Client(),
		Retrier:         testRetrier(),
	}
	items, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(items) != 1 || items[0].URL != "https://www.npmjs.com/package/tiny-lib" {
		t.Errorf("items = %+v, want npm package page fallback URL", items)
	}
}
