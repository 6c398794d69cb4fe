package main

import (
	"context"
	"fmt"
	"os"

	"adsdash/internal/aggregation"
	"adsdash/pkg/config"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	var envFiles []string

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(envFiles...)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}

	rootCmd := &cobra.Command{
		Use:           "adsdash",
		Short:         "Paid-ads dashboard API backed by Meta Ads insights",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, loadConfig)
		},
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load before reading the environment (default .env if present)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, loadConfig)
		},
	}

	summarizeCmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Print the dashboard summary of an insights payload (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, args, loadConfig)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the adsdash version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(serveCmd, summarizeCmd, versionCmd)
	return rootCmd
}

func newEngine(cfg config.DashboardConfig) *aggregation.Engine {
	return aggregation.NewEngine(aggregation.Config{
		ConversionActions: cfg.ConversionActions,
		Insights: aggregation.InsightConfig{
			CPCThreshold: cfg.CPCThreshold,
			CPMThreshold: cfg.CPMThreshold,
			Currency:     cfg.Currency,
		},
	})
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "adsdash: %v\n", err)
		os.Exit(1)
	}
}
