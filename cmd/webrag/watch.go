package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webrag/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run update whenever the registry or crawled pages change",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before an update starts")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.update(ctx, cmd); err != nil {
		return err
	}
	w, err := watch.New([]string{a.cfg.Ingest.Registry, a.cfg.Ingest.Dir}, watchDebounce, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("watching for changes",
		zap.String("registry", a.cfg.Ingest.Registry), zap.String("dir", a.cfg.Ingest.Dir))
	return w.Run(ctx, func(ctx context.Context) error {
		return a.update(ctx, cmd)
	})
}
