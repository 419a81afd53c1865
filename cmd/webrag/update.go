package main

import (
	"context"

	"github.com/spf13/cobra"

	"webrag/internal/changes"
	"webrag/internal/loader"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Re-index pages that changed since the last run",
	Long: `update compares the URL registry and the crawled markdown against the
stored snapshot, removes stale chunks of updated pages and indexes new and
updated pages.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	return a.update(ctx, cmd)
}

// update runs one incremental pass over the registry and prints its report.
func (a *app) update(ctx context.Context, cmd *cobra.Command) error {
	entries, err := loader.LoadRegistry(a.cfg.Ingest.Registry)
	if err != nil {
		return err
	}
	pages, err := loader.LoadPages(a.cfg.Ingest.Dir, entries)
	if err != nil {
		return err
	}
	report, err := a.updater().Run(ctx, pages)
	if err != nil {
		return err
	}

	cmd.Printf("Pages checked: %d\n", len(pages))
	for _, s := range []changes.Status{changes.StatusNew, changes.StatusUpdated, changes.StatusMetadataOnly, changes.StatusUnchanged} {
		cmd.Printf("  %-14s %d\n", s, report.Counts[s])
	}
	cmd.Printf("Chunks indexed: %d\n", report.Chunks)
	cmd.Printf("URLs tracked:   %d\n", report.Tracked)
	return nil
}
