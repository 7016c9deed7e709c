package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/dfa/internal/cli"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the automaton as MCP tools (classify, describe, graph, reload).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		if transport != "stdio" && transport != "sse" {
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.HandleExecutionError(cli.ServeMCP(ctx, cfg, logger, transport == "sse"))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8080, "Port for the sse transport")
	mcpCmd.Flags().Bool("watch", false, "Reload the specification when it changes")
}
