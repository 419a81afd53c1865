package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk and index every document in the ingest directory",
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	docs, err := a.loadDocuments()
	if err != nil {
		return err
	}
	n, err := a.indexer().Index(ctx, docs)
	if err != nil {
		return err
	}
	a.logger.Info("ingest finished", zap.Int("documents", len(docs)), zap.Int("chunks", n))
	cmd.Printf("Indexed %d chunks from %d documents\n", n, len(docs))
	return nil
}
