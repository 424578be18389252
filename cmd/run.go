package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var runDryRun bool

// runCmd executes one full digest run: collect, rank, deliver.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect news, assemble the digest, and post it to Slack",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		slog.Info("run: starting daily digest generation")

		if runDryRun {
			d, itemCount, err := buildDigest(ctx, cfg)
			if err != nil {
				return err
			}
			slog.Info("run: dry run, not delivering", "items", itemCount)
			out, err := yaml.Marshal(d)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		}

		report, err := runDigest(ctx, cfg, false)
		if err != nil {
			slog.Error("run: digest generation failed", "err", err)
			return err
		}
		if report.Delivered {
			slog.Info("run: digest delivered", "items", report.Items, "date", report.Date)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the digest as YAML instead of posting to Slack")
}
