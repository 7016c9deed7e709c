package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/dfa/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the specification for consistency",
	Long:  `Loads the specification and reports missing transitions, unreachable states, dead states and an empty language.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		return cli.Validate(cmd.Context(), cfg, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
