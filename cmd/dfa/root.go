package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/dfa/internal/cli"
	"github.com/aretw0/dfa/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "dfa",
	Short: "dfa classifies strings with a deterministic finite automaton",
	Long: `dfa loads an automaton specification (dfa.txt by default) and classifies every
line of an input file as accept or reject.

Without a subcommand it behaves like "dfa run".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./.dfa.yaml if present)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.StringP("spec", "s", "dfa.txt", "Automaton specification (.txt, .yaml or .json)")
	flags.Bool("strict", true, "Reject incomplete or ambiguous specifications at load time")
	flags.String("redis-addr", "", "Load the specification from redis at this address")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.String("redis-key", "dfa:spec", "Redis key holding the specification")
}

// setup resolves configuration and logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
