package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/dfa"
	"github.com/aretw0/dfa/internal/cli"
	"github.com/aretw0/dfa/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the automaton over HTTP: POST /classify, POST /classify/batch, POST /reload,
GET /automaton, GET /graph, GET /events, GET /metrics and GET /healthz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), dfa.Version)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("watch", false, "Reload the specification when it changes")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
