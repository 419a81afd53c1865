package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the index",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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
	ans, err := orch.Answer(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if askJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}
	cmd.Println(ans.Text)
	cmd.Printf("\nConfidence: %.2f\n", ans.Confidence)
	if len(ans.Sources) > 0 {
		cmd.Println("Sources:")
		for _, s := range ans.Sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	return nil
}
