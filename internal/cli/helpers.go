package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/dfa/internal/logging"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/runner"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger from a level name.
// It writes to Stderr so verdicts on Stdout stay clean.
func NewLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// createDebugHooks logs every engine event at debug level.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad: func(ctx context.Context, e *domain.LoadEvent) {
			if e.Err != nil {
				logger.Debug("Load (Error)", "source", e.Source, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.Debug("Load (Success)", "source", e.Source, "duration", e.Duration, "states", e.States)
		},
		OnClassify: func(ctx context.Context, e *domain.ClassifyEvent) {
			logger.Debug("Classify", "length", e.Length, "accepted", e.Accepted, "err", e.Err)
		},
	}
}

// IsInterrupted reports whether err only means the user stopped the command.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// HandleExecutionError maps interruptions to a clean exit.
func HandleExecutionError(err error) error {
	if err == nil || IsInterrupted(err) {
		return nil
	}
	return err
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// describeBatchError summarizes isolated failures for the terminal.
func describeBatchError(w io.Writer, err *runner.BatchError) {
	const shown = 5
	PrintSystemMessage(w, "%d of %d lines could not be classified (written as reject):", len(err.Errors), err.Total)
	for i, le := range err.Errors {
		if i == shown {
			fmt.Fprintf(w, "    ... and %d more\n", len(err.Errors)-shown)
			break
		}
		fmt.Fprintf(w, "    %v\n", le)
	}
}
