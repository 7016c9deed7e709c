package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/dfa/internal/cli"
)

var publishCmd = &cobra.Command{
	Use:   "publish [file]",
	Short: "Upload a specification to redis",
	Long: `Validates the specification and stores it under --redis-key. Servers started with
the same --redis-addr and --watch reload it immediately.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		path := cfg.Spec
		if len(args) > 0 {
			path = args[0]
		}
		return cli.Publish(cmd.Context(), cfg, logger, path)
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
