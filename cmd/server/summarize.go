package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"adsdash/internal/domain"
	"adsdash/pkg/config"

	"github.com/spf13/cobra"
)

func runSummarize(cmd *cobra.Command, args []string, loadConfig func() (*config.Config, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var payload []byte
	if len(args) == 1 && args[0] != "-" {
		payload, err = os.ReadFile(args[0])
	} else {
		payload, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read insights payload: %w", err)
	}

	records, err := domain.ParseInsightsPayload(payload)
	if err != nil {
		return err
	}

	summary := newEngine(cfg.Dashboard).Summarize(records)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
