/*
Package runner implements the batch classification loop.

It acts as the bridge between the engine and the outside world: it reads one candidate
per line, splits it into symbols, classifies it and hands the verdict to a pluggable
handler, preserving input order even when classification runs in parallel.

# Key Components

  - Runner: The main orchestrator.
  - Policy: What to do when a line hits a missing transition (isolate, reject, abort).
  - ResultHandler: Decouples how verdicts are written (plain text, NDJSON).

# Usage

	r := runner.New(engine,
		runner.WithPolicy(runner.PolicyIsolate),
		runner.WithWorkers(4),
	)

	summary, err := r.Run(ctx, os.Stdin, runner.NewTextHandler(os.Stdout))
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d accepted, %d rejected", summary.Accepted, summary.Rejected)
*/
package runner
