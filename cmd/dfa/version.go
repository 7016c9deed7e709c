package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/dfa"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dfa",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dfa version %s\n", strings.TrimSpace(dfa.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
