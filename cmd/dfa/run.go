package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/dfa/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify every line of the input file",
	Long: `Loads the specification, reads one comma separated input per line and writes
"accept" or "reject" for each, in order, to the output file. Use "-" for stdin/stdout.

Missing transition policies:
- isolate (default): the line is written as reject and reported at the end.
- reject: the line is written as reject silently.
- abort: stop at the first such line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		trace, _ := cmd.Flags().GetBool("trace")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, err = cli.RunBatch(ctx, cli.BatchOptions{
			Config: cfg,
			Logger: logger,
			Trace:  trace,
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "input.txt", "Input file, one comma separated string per line")
	runCmd.Flags().StringP("output", "o", "output.txt", "Output file for the verdicts")
	runCmd.Flags().String("policy", "isolate", "Missing transition policy: isolate, reject or abort")
	runCmd.Flags().IntP("workers", "w", 1, "Classify this many lines concurrently")
	runCmd.Flags().String("format", "text", "Output format: text or json (NDJSON)")
	runCmd.Flags().Bool("trace", false, "Log the visited states of every line (with --log-level debug)")

	// Make 'run' the default if no command is provided
	rootCmd.RunE = runCmd.RunE
}
