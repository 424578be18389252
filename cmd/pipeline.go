package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codebrief/internal/aggregator"
	"codebrief/internal/ai"
	"codebrief/internal/collector"
	"codebrief/internal/config"
	"codebrief/internal/digest"
	"codebrief/internal/model"
	"codebrief/internal/retry"
	"codebrief/internal/slack"
	"codebrief/internal/storage"
)

// runReport summarizes one pipeline run for logging and the serve-mode
// status endpoint.
type runReport struct {
	Items         int    `json:"items"`
	TopUpdates    int    `json:"top_updates"`
	QuickMentions int    `json:"quick_mentions"`
	CommunityBuzz int    `json:"community_buzz"`
	Delivered     bool   `json:"delivered"`
	Skipped       bool   `json:"skipped"`
	Date          string `json:"date"`
}

func newRetrier(cfg config.Config) (retry.Policy, error) {
	delay, err := time.ParseDuration(cfg.HTTP.RetryDelay)
	if err != nil {
		return retry.Policy{}, fmt.Errorf("invalid http.retry_delay: %w", err)
	}
	return retry.Policy{MaxAttempts: cfg.HTTP.MaxRetries, Delay: delay}, nil
}

func newHTTPClient(cfg config.Config) (*http.Client, error) {
	readTimeout, err := time.ParseDuration(cfg.HTTP.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid http.read_timeout: %w", err)
	}
	return &http.Client{Timeout: readTimeout}, nil
}

// newCollectors builds the enabled collectors from configuration.
func newCollectors(cfg config.Config, client *http.Client, retrier retry.Policy) []collector.Collector {
	src := cfg.Sources
	var cs []collector.Collector
	if src.GitHub.Enabled {
		cs = append(cs, &collector.GitHub{
			APIURL:          src.GitHub.APIURL,
			Repos:           src.GitHub.Repos,
			MinStars:        src.GitHub.MinStars,
			CollectionHours: src.CollectionHours,
			Client:          client,
			Retrier:         retrier,
		})
	}
	if src.Reddit.Enabled {
		cs = append(cs, &collector.Reddit{
			APIURL:     src.Reddit.APIURL,
			Subreddits: src.Reddit.Subreddits,
			MinUpvotes: src.Reddit.MinUpvotes,
			TimeFilter: src.Reddit.TimeFilter,
			Client:     client,
			Retrier:    retrier,
		})
	}
	if src.HackerNews.Enabled {
		cs = append(cs, &collector.HackerNews{
			APIURL:     src.HackerNews.APIURL,
			MinScore:   src.HackerNews.MinScore,
			MaxStories: src.HackerNews.MaxStories,
			Client:     client,
			Retrier:    retrier,
		})
	}
	if src.DevTo.Enabled {
		cs = append(cs, &collector.DevTo{
			APIURL:       src.DevTo.APIURL,
			Tags:         src.DevTo.Tags,
			MinReactions: src.DevTo.MinReactions,
			Client:       client,
			Retrier:      retrier,
		})
	}
	if src.RSS.Enabled {
		cs = append(cs, &collector.RSS{
			Feeds:           src.RSS.Feeds,
			CollectionHours: src.CollectionHours,
			Client:          client,
			Retrier:         retrier,
		})
	}
	if src.Npm.Enabled {
		cs = append(cs, &collector.Npm{
			RegistryURL:     src.Npm.RegistryURL,
			Packages:        src.Npm.Packages,
			CollectionHours: src.CollectionHours,
			Client:          client,
			Retrier:         retrier,
		})
	}
	return cs
}

// buildDigest runs collection and assembly, without delivery.
func buildDigest(ctx context.Context, cfg config.Config) (model.Digest, int, error) {
	retrier, err := newRetrier(cfg)
	if err != nil {
		return model.Digest{}, 0, err
	}
	client, err := newHTTPClient(cfg)
	if err != nil {
		return model.Digest{}, 0, err
	}
	taskTimeout, err := time.ParseDuration(cfg.Sources.TaskTimeout)
	if err != nil {
		return model.Digest{}, 0, fmt.Errorf("invalid sources.task_timeout: %w", err)
	}
	grace, err := time.ParseDuration(cfg.Sources.ShutdownGrace)
	if err != nil {
		return model.Digest{}, 0, fmt.Errorf("invalid sources.shutdown_grace: %w", err)
	}

	agg := aggregator.New(
		newCollectors(cfg, client, retrier),
		aggregator.WithTaskTimeout(taskTimeout),
		aggregator.WithShutdownGrace(grace),
	)
	defer agg.Close()
	items := agg.CollectAll(ctx)

	var ranker ai.Ranker
	if cfg.AI.APIKey != "" {
		ranker = ai.NewOpenAI(ai.Config{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			BaseURL:     cfg.AI.BaseURL,
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: cfg.AI.Temperature,
		})
	}
	asm := digest.NewAssembler(ranker, retrier)
	return asm.Assemble(ctx, items), len(items), nil
}

// runDigest executes the full pipeline: collect, assemble, deliver, archive.
// skipIfDelivered suppresses a second delivery for the same day (serve mode
// after a restart); it requires the redis archive to be configured.
func runDigest(ctx context.Context, cfg config.Config, skipIfDelivered bool) (runReport, error) {
	date := time.Now().UTC().Format("2006-01-02")
	report := runReport{Date: date}

	var store *storage.RedisStore
	if cfg.Redis.Addr != "" {
		rdb := storage.NewClient(cfg.Redis)
		defer rdb.Close()
		store = storage.NewRedisStore(rdb)
	}
	if skipIfDelivered && store != nil {
		delivered, err := store.IsDelivered(ctx, date)
		if err != nil {
			slog.Warn("pipeline: delivered-marker check failed", "err", err)
		} else if delivered {
			slog.Info("pipeline: digest already delivered today, skipping", "date", date)
			report.Skipped = true
			return report, nil
		}
	}

	d, itemCount, err := buildDigest(ctx, cfg)
	if err != nil {
		return report, err
	}
	report.Items = itemCount
	report.TopUpdates = len(d.TopUpdates)
	report.QuickMentions = len(d.QuickMentions)
	report.CommunityBuzz = len(d.CommunityBuzz)

	if itemCount == 0 {
		slog.Warn("pipeline: no news items collected, nothing to deliver")
		return report, nil
	}
	slog.Info("pipeline: digest assembled",
		"top_updates", report.TopUpdates,
		"quick_mentions", report.QuickMentions,
		"community_buzz", report.CommunityBuzz)

	retrier, err := newRetrier(cfg)
	if err != nil {
		return report, err
	}
	slackTimeout, err := time.ParseDuration(cfg.Slack.Timeout)
	if err != nil {
		return report, fmt.Errorf("invalid slack.timeout: %w", err)
	}
	sc := slack.New(cfg.Slack.WebhookURL, slackTimeout, retrier)
	if err := sc.PostDigest(ctx, d); err != nil {
		return report, err
	}
	report.Delivered = true

	if store != nil {
		if err := store.MarkDelivered(ctx, date); err != nil {
			slog.Warn("pipeline: mark delivered failed", "err", err)
		}
		if err := store.ArchiveDigest(ctx, date, slack.FormatDigest(d)); err != nil {
			slog.Warn("pipeline: archive digest failed", "err", err)
		}
	}
	return report, nil
}
