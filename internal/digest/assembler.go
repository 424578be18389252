package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"codebrief/internal/ai"
	"codebrief/internal/model"
	"codebrief/internal/retry"
)

const dateLayout = "Monday, January 2, 2006"

// Assembler turns the merged item sequence into a Digest. It always
// succeeds: if the ranking call fails after retries, or its response cannot
// be parsed, a deterministic score-based bucketing takes over.
type Assembler struct {
	ranker  ai.Ranker
	retrier retry.Policy
	now     func() time.Time
}

// NewAssembler builds an Assembler. ranker may be nil, in which case every
// run takes the fallback path.
func NewAssembler(ranker ai.Ranker, retrier retry.Policy) *Assembler {
	return &Assembler{ranker: ranker, retrier: retrier, now: time.Now}
}

// Assemble produces the Digest for one run.
func (a *Assembler) Assemble(ctx context.Context, items []model.NewsItem) model.Digest {
	if len(items) == 0 {
		slog.Warn("digest: no news items to process")
		return model.Digest{
			Date:          a.date(),
			TopUpdates:    []model.NewsItem{},
			QuickMentions: []model.NewsItem{},
			CommunityBuzz: []model.NewsItem{},
		}
	}
	if a.ranker == nil {
		slog.Info("digest: no ranker configured, using score-based buckets")
		return a.fallback(items)
	}

	slog.Info("digest: ranking news items", "count", len(items))
	prompt := buildPrompt(items)
	response, err := retry.DoValue(ctx, a.retrier, "rank digest", func() (string, error) {
		return a.ranker.Rank(ctx, prompt)
	})
	if err != nil {
		slog.Error("digest: ranking call failed, falling back", "err", err)
		return a.fallback(items)
	}
	d, err := a.parseResponse(response, items)
	if err != nil {
		slog.Error("digest: unparsable ranking response, falling back", "err", err)
		return a.fallback(items)
	}
	return d
}

func (a *Assembler) date() string {
	return a.now().Format(dateLayout)
}

// buildPrompt enumerates the items with 1-based indices and asks for three
// index lists as a single JSON object.
func buildPrompt(items []model.NewsItem) string {
	var b strings.Builder
	b.WriteString("You are a frontend development news curator. Analyze the following news items and create a concise daily digest.\n\n")
	b.WriteString("NEWS ITEMS:\n")
	for i, item := range items {
		score := "N/A"
		if item.Score != nil {
			score = fmt.Sprintf("%d", *item.Score)
		}
		fmt.Fprintf(&b, "%d. [%s] %s (Score: %s)\n", i+1, item.Source, item.Title, score)
		if item.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", item.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nTASK:\n")
	b.WriteString("1. Identify the TOP 3 most important updates (framework releases, major news)\n")
	b.WriteString("2. List 3-5 quick mentions (interesting but less critical)\n")
	b.WriteString("3. Highlight 2-3 community discussions (Reddit/HN posts with high engagement)\n\n")
	b.WriteString("OUTPUT FORMAT (respond with ONLY this JSON, no markdown formatting):\n")
	b.WriteString("{\n")
	b.WriteString("  \"topUpdates\": [1, 3, 7],  // indices of top 3 items\n")
	b.WriteString("  \"quickMentions\": [2, 5, 9, 12],  // indices of 3-5 items\n")
	b.WriteString("  \"communityBuzz\": [4, 8]  // indices of 2-3 discussion items\n")
	b.WriteString("}\n")
	return b.String()
}

// rankingResponse is the JSON shape the model is asked to return. Indices
// are 1-based into the prompt's item enumeration.
type rankingResponse struct {
	TopUpdates    []int `json:"topUpdates"`
	QuickMentions []int `json:"quickMentions"`
	CommunityBuzz []int `json:"communityBuzz"`
}

func (a *Assembler) parseResponse(response string, items []model.NewsItem) (model.Digest, error) {
	var parsed rankingResponse
	if err := json.Unmarshal([]byte(stripFences(response)), &parsed); err != nil {
		return model.Digest{}, fmt.Errorf("decode ranking response: %w", err)
	}
	return model.Digest{
		Date:          a.date(),
		TopUpdates:    resolveIndices(parsed.TopUpdates, items),
		QuickMentions: resolveIndices(parsed.QuickMentions, items),
		CommunityBuzz: resolveIndices(parsed.CommunityBuzz, items),
	}, nil
}

// stripFences removes a leading markdown code fence (with or without a
// language tag) and a trailing fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// resolveIndices maps 1-based indices onto the shared item sequence,
// silently dropping anything out of bounds. The listed indices are trusted
// but individually validated.
func resolveIndices(indices []int, items []model.NewsItem) []model.NewsItem {
	out := make([]model.NewsItem, 0, len(indices))
	for _, idx := range indices {
		i := idx - 1
		if i < 0 || i >= len(items) {
			continue
		}
		out = append(out, items[i])
	}
	return out
}

// fallback sorts by score descending (missing score counts as zero; stable,
// so equal scores keep their relative order) and slices the result into the
// three buckets, clamped to the available count.
func (a *Assembler) fallback(items []model.NewsItem) model.Digest {
	sorted := make([]model.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scoreOrZero(sorted[i]) > scoreOrZero(sorted[j])
	})
	return model.Digest{
		Date:          a.date(),
		TopUpdates:    sorted[:min(3, len(sorted))],
		QuickMentions: sorted[min(3, len(sorted)):min(8, len(sorted))],
		CommunityBuzz: sorted[min(8, len(sorted)):min(10, len(sorted))],
	}
}

func scoreOrZero(it model.NewsItem) int {
	if it.Score == nil {
		return 0
	}
	return *it.Score
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
