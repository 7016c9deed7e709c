package runner

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultChunkSize is the number of lines classified together in parallel mode.
const DefaultChunkSize = 1024

// Policy decides what happens to a line whose classification fails with a
// missing transition.
type Policy string

const (
	// PolicyIsolate writes "reject" for the line, keeps going and reports every
	// failed line in a *BatchError once the batch is done.
	PolicyIsolate Policy = "isolate"
	// PolicyReject treats the failure as an implicit reject and reports nothing.
	PolicyReject Policy = "reject"
	// PolicyAbort stops at the first failing line.
	PolicyAbort Policy = "abort"
)

// ParsePolicy validates a policy name. Empty means PolicyIsolate.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyIsolate, nil
	case PolicyIsolate, PolicyReject, PolicyAbort:
		return p, nil
	default:
		return "", fmt.Errorf("unknown policy %q (want isolate, reject or abort)", s)
	}
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithPolicy configures the missing-transition policy.
func WithPolicy(p Policy) Option {
	return func(r *Runner) {
		r.Policy = p
	}
}

// WithWorkers classifies up to n lines concurrently. Values below 2 run sequentially.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.Workers = n
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}
