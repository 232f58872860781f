// Package cmd defines and implements the CLI commands for the webbook
// executable. The CLI owns bootstrapping and result output; the crawl engine
// itself only returns in-memory results.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webbook",
		Short: "Crawls the WebBook chemical catalog and extracts records",
		Long: `webbook discovers every formula page reachable from a catalog seed
index, then extracts structured chemical records (name, formula, molecular
weight, identifiers, spectral references) from the discovered pages. The
number of concurrent requests is capped globally, and pages that fail
transiently are retried on following frontier rounds.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(newLinksCmd())
	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newCrossrefCmd())

	return cmd
}

// Execute is the main entry point. It installs signal handling so an
// interrupt stops in-flight fetches and surfaces the partial result.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func syncLogger(logger *zap.Logger) {
	_ = logger.Sync()
}
