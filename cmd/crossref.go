package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCrossrefCmd creates the 'crossref' subcommand, which harvests one
// labeled cross-reference link per discovered formula page.
func newCrossrefCmd() *cobra.Command {
	var (
		seed  string
		label string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "crossref",
		Short: "Collects one labeled cross-reference link per formula page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.close(context.Background())

			res := discover(cmd.Context(), rt, seed)
			refs := rt.crawler.CollectCrossReference(cmd.Context(), res.Leaves, label)
			rt.logger.Info("cross-reference harvest finished",
				zap.String("label", label),
				zap.Int("refs", refs.Len()),
			)

			payload, err := json.MarshalIndent(refs.Slice(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal links: %w", err)
			}
			return writeOutput(cmd, out, payload)
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "seed catalog path (overrides config)")
	cmd.Flags().StringVar(&label, "label", "IR Spectrum", "anchor label to harvest")
	cmd.Flags().StringVar(&out, "out", "", "output file (defaults to stdout)")
	return cmd
}
