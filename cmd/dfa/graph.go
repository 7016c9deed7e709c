package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/dfa/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the automaton as a diagram",
	Long:  `Outputs a Mermaid state diagram (default) or a Graphviz DOT digraph of the automaton.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("type")
		highlight, _ := cmd.Flags().GetString("highlight")

		return cli.Graph(cmd.Context(), cfg, logger, cmd.OutOrStdout(), cli.GraphOptions{
			Format: kind,
			Input:  highlight,
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("type", "t", "mermaid", "Diagram type: mermaid or dot")
	graphCmd.Flags().String("highlight", "", "Highlight the path taken by this input, e.g. 0,1,1")
}
