package cmd

import (
	"context"
	"fmt"
	"time"

	"codebrief/internal/slack"

	"github.com/spf13/cobra"
)

// testWebhookCmd posts a canned message to verify the Slack webhook.
var testWebhookCmd = &cobra.Command{
	Use:   "test-webhook",
	Short: "Post a test message to the configured Slack webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		retrier, err := newRetrier(cfg)
		if err != nil {
			return err
		}
		timeout, err := time.ParseDuration(cfg.Slack.Timeout)
		if err != nil {
			return fmt.Errorf("invalid slack.timeout: %w", err)
		}
		sc := slack.New(cfg.Slack.WebhookURL, timeout, retrier)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sc.TestWebhook(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Slack webhook test successful.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testWebhookCmd)
}
