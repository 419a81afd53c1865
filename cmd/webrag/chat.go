package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"webrag/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions in an interactive terminal UI",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
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
	title := "webrag: " + a.embedder.Name() + " / " + a.cfg.VectorStore.Type + " / " + a.cfg.LLM.Provider
	p := tea.NewProgram(tui.New(ctx, orch, title), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
