package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/dfa/internal/compiler"
	"github.com/aretw0/dfa/pkg/domain"
)

// Classifier is the part of the engine the runner needs.
// *dfa.Engine satisfies it.
type Classifier interface {
	Classify(ctx context.Context, symbols []domain.Symbol) (bool, error)
}

// Summary counts what a batch produced.
type Summary struct {
	Total    int
	Accepted int
	Rejected int
	Failed   int
}

// Runner drives a Classifier over a line-oriented input.
type Runner struct {
	Classifier Classifier
	Policy     Policy
	Workers    int

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// New creates a Runner with the isolate policy and a single worker.
func New(c Classifier, opts ...Option) *Runner {
	r := &Runner{
		Classifier: c,
		Policy:     PolicyIsolate,
		Workers:    1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

type pending struct {
	line  int
	input []domain.Symbol
	ok    bool
	err   error
}

// Run classifies every line of in and hands the verdicts to h in input order.
// The handler is flushed before Run returns, also on error.
//
// Under PolicyIsolate the returned error is a *BatchError listing every failed line.
// Under PolicyAbort it is the *LineError of the first failure. Failures other than a
// missing transition (e.g. domain.ErrNotLoaded) always stop the batch.
func (r *Runner) Run(ctx context.Context, in io.Reader, h ResultHandler) (sum Summary, err error) {
	if r.Classifier == nil {
		return sum, fmt.Errorf("runner has no classifier")
	}
	defer func() {
		if ferr := h.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("failed to flush output: %w", ferr)
		}
	}()

	reader := bufio.NewReader(in)
	var readErr error

	var failed []*LineError
	emit := func(p pending) error {
		res, lineErr := r.resolve(p)
		if lineErr != nil {
			switch {
			case !errors.Is(lineErr, domain.ErrMissingTransition), r.Policy == PolicyAbort:
				return lineErr
			case r.Policy == PolicyIsolate:
				failed = append(failed, lineErr)
				sum.Failed++
			}
		}
		sum.Total++
		if res.Verdict == VerdictAccept {
			sum.Accepted++
		} else {
			sum.Rejected++
		}
		return h.Handle(res)
	}

	chunk := 1
	if r.Workers > 1 {
		chunk = DefaultChunkSize
	}
	batch := make([]pending, 0, chunk)
	lineNo := 0

	for {
		batch = batch[:0]
		for readErr == nil && len(batch) < chunk {
			line, err := compiler.ReadLine(reader)
			if err != nil {
				readErr = err
				break
			}
			lineNo++
			batch = append(batch, pending{line: lineNo, input: compiler.ParseSymbols(line)})
		}
		if len(batch) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if err := r.classify(ctx, batch); err != nil {
			return sum, err
		}
		for _, p := range batch {
			if err := emit(p); err != nil {
				r.Logger.Debug("batch stopped", "line", p.line, "err", err)
				return sum, err
			}
		}
	}
	if readErr != nil && readErr != io.EOF {
		return sum, fmt.Errorf("failed to read input: %w", readErr)
	}

	r.Logger.Debug("batch done", "total", sum.Total, "accepted", sum.Accepted, "failed", sum.Failed)
	if len(failed) > 0 {
		return sum, &BatchError{Errors: failed, Total: sum.Total}
	}
	return sum, nil
}

// classify fills in ok/err for every entry of batch, in parallel when configured.
func (r *Runner) classify(ctx context.Context, batch []pending) error {
	if r.Workers <= 1 || len(batch) == 1 {
		for i := range batch {
			batch[i].ok, batch[i].err = r.Classifier.Classify(ctx, batch[i].input)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			batch[i].ok, batch[i].err = r.Classifier.Classify(gctx, batch[i].input)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) resolve(p pending) (Result, *LineError) {
	res := Result{Line: p.line, Input: p.input, Verdict: VerdictReject}
	if p.err == nil {
		if p.ok {
			res.Verdict = VerdictAccept
		}
		return res, nil
	}
	lineErr := &LineError{Line: p.line, Err: p.err}
	if r.Policy != PolicyReject {
		res.Err = p.err
	}
	return res, lineErr
}
