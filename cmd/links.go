package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spectralml/webbook-crawler/internal/catalog"
	"github.com/spectralml/webbook-crawler/internal/crawl"
)

// newLinksCmd creates the 'links' subcommand, which runs frontier discovery
// only and prints every discovered formula link.
func newLinksCmd() *cobra.Command {
	var seed string

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Discovers all formula links reachable from the seed index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.close(context.Background())

			res := discover(cmd.Context(), rt, seed)
			for _, link := range res.Leaves.Slice() {
				fmt.Fprintln(cmd.OutOrStdout(), link)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "seed catalog path (overrides config)")
	return cmd
}

// discover runs leaf discovery from the configured or overridden seed and
// logs the reportable outcome. It never fails; truncation is advisory.
func discover(ctx context.Context, rt *runtime, seedOverride string) crawl.Result {
	seed := rt.cfg.Catalog.Seed
	if seedOverride != "" {
		seed = seedOverride
	}

	res := rt.crawler.CollectAllLeafLinks(ctx, catalog.Link(seed))
	if res.HitCeiling {
		rt.logger.Warn("discovery truncated at iteration ceiling",
			zap.Int("iterations", res.Iterations),
			zap.Int("unresolved", res.Unresolved.Len()),
		)
	}
	rt.logger.Info("discovery finished",
		zap.Int("leaves", res.Leaves.Len()),
		zap.Int("iterations", res.Iterations),
	)
	return res
}
