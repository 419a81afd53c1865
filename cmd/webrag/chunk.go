package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webrag/internal/chunker"
	"webrag/internal/domain"
)

var (
	chunkStrategy string
	chunkSource   string
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Print the chunks produced for a markdown file",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

func init() {
	chunkCmd.Flags().StringVar(&chunkStrategy, "strategy", "", "chunking strategy (semantic_filtered or raw_scored)")
	chunkCmd.Flags().StringVar(&chunkSource, "source", "", "source name used in chunk ids (default: file name)")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name := cfg.Chunking.Strategy
	if chunkStrategy != "" {
		name = chunkStrategy
	}
	strategy, err := chunker.NewStrategy(name, cfg.ChunkerConfig(), zap.NewNop())
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	source := chunkSource
	if source == "" {
		source = filepath.Base(args[0])
	}
	chunks := strategy.Chunk(string(data), source)
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(chunks)
}
