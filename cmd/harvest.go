package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newHarvestCmd creates the 'harvest' subcommand: full discovery followed by
// record extraction, emitted as JSON.
func newHarvestCmd() *cobra.Command {
	var (
		seed string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Discovers formula pages and extracts chemical records as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.close(context.Background())

			res := discover(cmd.Context(), rt, seed)
			records := rt.crawler.CollectRecords(cmd.Context(), res.Leaves)
			rt.logger.Info("harvest finished",
				zap.Int("leaves", res.Leaves.Len()),
				zap.Int("records", len(records)),
			)

			payload, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal records: %w", err)
			}
			return writeOutput(cmd, out, payload)
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "seed catalog path (overrides config)")
	cmd.Flags().StringVar(&out, "out", "", "output file (defaults to stdout)")
	return cmd
}

func writeOutput(cmd *cobra.Command, out string, payload []byte) error {
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}
	if err := os.WriteFile(out, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
