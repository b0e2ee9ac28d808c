package main

import (
	"fmt"

	"github.com/aretw0/assetbot/pkg/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dialogue flow as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the transition table: stages, handler nodes and
guarded edges in evaluation order. With --session, the session's current stage is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var overlay *graph.Overlay
		if key, _ := cmd.Flags().GetString("session"); key != "" {
			state, err := app.Engine.Inspect(cmd.Context(), key)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", key, err)
			}
			overlay = &graph.Overlay{CurrentStage: state.Stage()}
		}

		fmt.Fprint(cmd.OutOrStdout(), app.Engine.Mermaid(overlay))
		return nil
	},
}

func init() {
	graphCmd.Flags().String("session", "", "Highlight the current stage of this session")
	rootCmd.AddCommand(graphCmd)
}
