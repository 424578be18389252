package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codebrief/internal/model"
	"codebrief/internal/retry"
)

// Client posts digest messages to a Slack incoming webhook. Unlike collector
// or ranking failures, a delivery failure is fatal to the run and is
// returned to the caller.
type Client struct {
	webhookURL string
	http       *http.Client
	retrier    retry.Policy
}

func New(webhookURL string, timeout time.Duration, retrier retry.Policy) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: timeout},
		retrier:    retrier,
	}
}

// PostDigest formats the digest and sends it to the webhook.
func (c *Client) PostDigest(ctx context.Context, d model.Digest) error {
	slog.Info("slack: posting digest")
	if err := c.send(ctx, FormatDigest(d)); err != nil {
		return fmt.Errorf("post digest to slack: %w", err)
	}
	slog.Info("slack: digest posted")
	return nil
}

// TestWebhook posts a canned message to verify the webhook configuration.
func (c *Client) TestWebhook(ctx context.Context) error {
	return c.send(ctx, "🎉 Code Brief is set up and ready to go!")
}

func (c *Client) send(ctx context.Context, message string) error {
	if strings.TrimSpace(c.webhookURL) == "" {
		return errors.New("slack webhook URL not configured")
	}
	payload, err := json.Marshal(map[string]any{
		"text":   message,
		"mrkdwn": true,
	})
	if err != nil {
		return err
	}
	return c.retrier.Do(ctx, "slack webhook", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("slack webhook status %d: %s", resp.StatusCode, string(b))
		}
		return nil
	})
}

// FormatDigest renders the digest as a Slack mrkdwn message.
func FormatDigest(d model.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📬 *Code Brief - %s*\n\n", d.Date)

	if len(d.TopUpdates) > 0 {
		b.WriteString("🔥 *Top Updates*\n")
		for _, item := range d.TopUpdates {
			b.WriteString(formatItem(item, true))
		}
		b.WriteString("\n")
	}
	if len(d.QuickMentions) > 0 {
		b.WriteString("📰 *Quick Mentions*\n")
		for _, item := range d.QuickMentions {
			b.WriteString(formatItem(item, false))
		}
		b.WriteString("\n")
	}
	if len(d.CommunityBuzz) > 0 {
		b.WriteString("💬 *Community Buzz*\n")
		for _, item := range d.CommunityBuzz {
			b.WriteString(formatItem(item, true))
		}
		b.WriteString("\n")
	}

	b.WriteString("────────────────────────────────\n")
	b.WriteString("_Curated by AI • Running on codebrief_")
	return b.String()
}

func formatItem(item model.NewsItem, includeScore bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "• %s <%s|%s>", item.Source.Emoji(), item.URL, item.Title)
	if includeScore && item.Score != nil {
		fmt.Fprintf(&b, " (%d%s)", *item.Score, scoreUnit(item.Source))
	}
	b.WriteString("\n")
	return b.String()
}

func scoreUnit(s model.Source) string {
	switch strings.ToLower(string(s)) {
	case "reddit":
		return " upvotes"
	case "hackernews":
		return " points"
	case "github":
		return " stars"
	case "devto":
		return " reactions"
	default:
		return ""
	}
}
