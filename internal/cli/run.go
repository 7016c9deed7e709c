package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/dfa/internal/config"
	"github.com/aretw0/dfa/pkg/adapters/file"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/runner"
)

// stdio is the path value that selects Stdin/Stdout.
const stdio = "-"

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Config *config.Config
	Logger *slog.Logger
	Trace  bool      // log the visited states of every line at debug level
	Stdin  io.Reader // used when Config.Input is "-"
	Stdout io.Writer // used when Config.Output is "-"
	Stderr io.Writer // receives the failed-lines summary
}

// RunBatch loads the specification, classifies every line of the input file and
// writes one verdict per line to the output file.
//
// The output file is replaced atomically. It is committed when the batch completes,
// including isolated failures and an aborted batch (which keeps the verdicts written
// before the failing line); any other failure leaves the previous file untouched.
func RunBatch(ctx context.Context, opts BatchOptions) (runner.Summary, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	policy, err := runner.ParsePolicy(cfg.Policy)
	if err != nil {
		return runner.Summary{}, err
	}

	engine, closeEngine, err := createEngine(EngineOptions{Config: cfg, Logger: logger})
	if err != nil {
		return runner.Summary{}, err
	}
	defer closeEngine()

	if _, err := engine.Load(ctx); err != nil {
		return runner.Summary{}, err
	}

	in, closeIn, err := openInput(cfg.Input, opts.Stdin)
	if err != nil {
		return runner.Summary{}, err
	}
	defer closeIn()

	out, commit, abort, err := openOutput(cfg.Output, opts.Stdout)
	if err != nil {
		return runner.Summary{}, err
	}

	var handler runner.ResultHandler = runner.NewTextHandler(out)
	if cfg.Format == "json" {
		handler = runner.NewJSONHandler(out)
	}

	var classifier runner.Classifier = engine
	if opts.Trace {
		classifier = &tracingClassifier{engine: engine, logger: logger}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	r := runner.New(classifier,
		runner.WithPolicy(policy),
		runner.WithWorkers(workers),
		runner.WithLogger(logger),
	)
	sum, runErr := r.Run(ctx, in, handler)

	var batchErr *runner.BatchError
	keep := runErr == nil || errors.As(runErr, &batchErr) ||
		(policy == runner.PolicyAbort && errors.Is(runErr, domain.ErrMissingTransition))
	if !keep {
		abort()
		return sum, runErr
	}
	if err := commit(); err != nil {
		return sum, fmt.Errorf("failed to write %s: %w", cfg.Output, err)
	}

	logger.Info("batch finished", "total", sum.Total, "accepted", sum.Accepted, "rejected", sum.Rejected, "failed", sum.Failed)
	if batchErr != nil {
		describeBatchError(stderr, batchErr)
	}
	return sum, runErr
}

func openInput(path string, stdin io.Reader) (io.Reader, func() error, error) {
	if path == stdio {
		if stdin == nil {
			stdin = os.Stdin
		}
		return stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, f.Close, nil
}

func openOutput(path string, stdout io.Writer) (w io.Writer, commit func() error, abort func(), err error) {
	if path == stdio {
		if stdout == nil {
			stdout = os.Stdout
		}
		return stdout, func() error { return nil }, func() {}, nil
	}
	sink, err := file.CreateSink(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return sink, sink.Close, sink.Abort, nil
}

// tracingClassifier logs the path of every classification.
type tracingClassifier struct {
	engine interface {
		runner.Classifier
		Trace(ctx context.Context, symbols []domain.Symbol) ([]string, error)
	}
	logger *slog.Logger
}

func (t *tracingClassifier) Classify(ctx context.Context, symbols []domain.Symbol) (bool, error) {
	ok, err := t.engine.Classify(ctx, symbols)
	path, _ := t.engine.Trace(ctx, symbols)
	t.logger.Debug("trace", "input", symbols, "path", path, "accepted", ok)
	return ok, err
}
