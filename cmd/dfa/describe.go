package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/dfa/internal/cli"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the transition table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		plain, _ := cmd.Flags().GetBool("plain")
		return cli.Describe(cmd.Context(), cfg, logger, cmd.OutOrStdout(), plain)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("plain", false, "Print raw Markdown instead of styled output")
}
