package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"codebrief/internal/model"
	"codebrief/internal/retry"
)

type fakeRanker struct {
	response string
	err      error
	calls    int
}

func (f *fakeRanker) Rank(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, Delay: time.Millisecond}
}

func fixedClock() time.Time {
	return time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
}

func scoredItem(title string, score int) model.NewsItem {
	return model.NewsItem{
		Title:  title,
		URL:    "https://example.com/" + title,
		Source: model.SourceHackerNews,
		Score:  &score,
	}
}

func unscoredItem(title string) model.NewsItem {
	return model.NewsItem{
		Title:  title,
		URL:    "https://example.com/" + title,
		Source: model.SourceNpm,
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	ranker := &fakeRanker{response: `{"topUpdates":[1]}`}
	a := NewAssembler(ranker, testPolicy())
	a.now = fixedClock

	d := a.Assemble(context.Background(), nil)

	if d.Date == "" {
		t.Error("date should be populated")
	}
	if len(d.TopUpdates) != 0 || len(d.QuickMentions) != 0 || len(d.CommunityBuzz) != 0 {
		t.Errorf("all buckets should be empty, got %d/%d/%d", len(d.TopUpdates), len(d.QuickMentions), len(d.CommunityBuzz))
	}
	if ranker.calls != 0 {
		t.Errorf("ranker called %d times for empty input, want 0", ranker.calls)
	}
}

func TestAssembleDateFormat(t *testing.T) {
	a := NewAssembler(nil, testPolicy())
	a.now = fixedClock
	d := a.Assemble(context.Background(), nil)
	if d.Date != "Friday, March 14, 2025" {
		t.Errorf("date = %q, want %q", d.Date, "Friday, March 14, 2025")
	}
}

func TestAssembleParsesRankingResponse(t *testing.T) {
	items := []model.NewsItem{
		scoredItem("a", 10),
		scoredItem("b", 20),
		scoredItem("c", 30),
		scoredItem("d", 40),
	}
	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "bare json",
			response: `{"topUpdates":[1,50],"quickMentions":[2]}`,
		},
		{
			name:     "json fence",
			response: "```json\n{\"topUpdates\":[1,50],\"quickMentions\":[2]}\n```",
		},
		{
			name:     "plain fence",
			response: "```\n{\"topUpdates\":[1,50],\"quickMentions\":[2]}\n```",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(&fakeRanker{response: tt.response}, testPolicy())
			a.now = fixedClock
			d := a.Assemble(context.Background(), items)

			// index 50 is out of bounds and silently dropped
			if len(d.TopUpdates) != 1 || d.TopUpdates[0].Title != "a" {
				t.Errorf("topUpdates = %+v, want only item a", d.TopUpdates)
			}
			if len(d.QuickMentions) != 1 || d.QuickMentions[0].Title != "b" {
				t.Errorf("quickMentions = %+v, want only item b", d.QuickMentions)
			}
			if len(d.CommunityBuzz) != 0 {
				t.Errorf("communityBuzz = %+v, want empty for absent field", d.CommunityBuzz)
			}
		})
	}
}

func TestAssembleFallbackOnRankerFailure(t *testing.T) {
	items := make([]model.NewsItem, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, scoredItem(fmt.Sprintf("item-%d", i), (i+1)*10))
	}
	ranker := &fakeRanker{err: errors.New("service unavailable")}
	a := NewAssembler(ranker, testPolicy())
	a.now = fixedClock

	d := a.Assemble(context.Background(), items)

	if ranker.calls != 2 {
		t.Errorf("ranker calls = %d, want 2 (retried once)", ranker.calls)
	}
	if len(d.TopUpdates) != 3 {
		t.Fatalf("topUpdates size = %d, want 3", len(d.TopUpdates))
	}
	for i, want := range []string{"item-11", "item-10", "item-9"} {
		if d.TopUpdates[i].Title != want {
			t.Errorf("topUpdates[%d] = %q, want %q", i, d.TopUpdates[i].Title, want)
		}
	}
	if len(d.QuickMentions) != 5 {
		t.Errorf("quickMentions size = %d, want 5", len(d.QuickMentions))
	}
	if len(d.CommunityBuzz) != 2 {
		t.Errorf("communityBuzz size = %d, want 2", len(d.CommunityBuzz))
	}
}

func TestAssembleFallbackOnMalformedResponse(t *testing.T) {
	items := []model.NewsItem{
		scoredItem("low", 1),
		scoredItem("high", 99),
	}
	tests := []struct {
		name     string
		response string
	}{
		{name: "not json", response: "sorry, I cannot help with that"},
		{name: "wrong types", response: `{"topUpdates":["first","third"]}`},
		{name: "array instead of object", response: `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(&fakeRanker{response: tt.response}, testPolicy())
			a.now = fixedClock
			d := a.Assemble(context.Background(), items)
			if len(d.TopUpdates) != 2 || d.TopUpdates[0].Title != "high" {
				t.Errorf("fallback not applied, topUpdates = %+v", d.TopUpdates)
			}
		})
	}
}

func TestAssembleNilRankerUsesFallback(t *testing.T) {
	a := NewAssembler(nil, testPolicy())
	a.now = fixedClock
	d := a.Assemble(context.Background(), []model.NewsItem{scoredItem("only", 5)})
	if len(d.TopUpdates) != 1 || d.TopUpdates[0].Title != "only" {
		t.Errorf("topUpdates = %+v, want the single item", d.TopUpdates)
	}
	if len(d.QuickMentions) != 0 || len(d.CommunityBuzz) != 0 {
		t.Errorf("later buckets should be empty with one item")
	}
}

func TestFallbackTreatsMissingScoreAsZero(t *testing.T) {
	a := NewAssembler(nil, testPolicy())
	a.now = fixedClock
	items := []model.NewsItem{
		unscoredItem("no-score-1"),
		scoredItem("scored", 5),
		unscoredItem("no-score-2"),
	}
	d := a.fallback(items)
	want := []string{"scored", "no-score-1", "no-score-2"} // stable among equals
	for i, title := range want {
		if d.TopUpdates[i].Title != title {
			t.Errorf("topUpdates[%d] = %q, want %q", i, d.TopUpdates[i].Title, title)
		}
	}
}

func TestFallbackIdempotent(t *testing.T) {
	a := NewAssembler(nil, testPolicy())
	a.now = fixedClock
	items := []model.NewsItem{
		scoredItem("a", 3),
		scoredItem("b", 3),
		scoredItem("c", 7),
		unscoredItem("d"),
	}
	first := a.fallback(items)
	second := a.fallback(items)
	for i := range first.TopUpdates {
		if first.TopUpdates[i].Title != second.TopUpdates[i].Title {
			t.Fatalf("fallback not idempotent at topUpdates[%d]: %q vs %q", i, first.TopUpdates[i].Title, second.TopUpdates[i].Title)
		}
	}
	for i := range first.QuickMentions {
		if first.QuickMentions[i].Title != second.QuickMentions[i].Title {
			t.Fatalf("fallback not idempotent at quickMentions[%d]", i)
		}
	}
	// input order must be untouched
	if items[0].Title != "a" || items[3].Title != "d" {
		t.Error("fallback mutated its input")
	}
}

func TestBuildPrompt(t *testing.T) {
	items := []model.NewsItem{
		scoredItem("React 20 released", 500),
		unscoredItem("left-pad v2.0.0"),
	}
	items[1].Description = "A package"
	prompt := buildPrompt(items)

	for _, want := range []string{
		"1. [HackerNews] React 20 released (Score: 500)",
		"2. [npm] left-pad v2.0.0 (Score: N/A)",
		"Description: A package",
		`"topUpdates"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no fence", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "leading whitespace", in: "  ```json\n{\"a\":1}\n``` ", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
