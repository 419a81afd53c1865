package main

import (
	"github.com/spf13/cobra"

	"webrag/internal/api"
)

const version = "0.1.0"

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	orch, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}
	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := api.NewServer(orch, api.Info{
		Name:        "webrag",
		Version:     version,
		Description: "Answers questions from indexed website content",
		Capabilities: []string{
			"Retrieval over chunked web pages and documents",
			"Grounded answers with source URLs",
			"Retrieval confidence scoring",
		},
	}, a.registry, a.logger)
	return srv.ListenAndServe(ctx, addr)
}
