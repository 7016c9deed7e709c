package dfa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/dfa/internal/compiler"
	"github.com/aretw0/dfa/pkg/adapters/file"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/ports"
)

// reloadLockKey names the distributed lock taken around every load.
const reloadLockKey = "reload"

// Engine is the high-level entry point for the dfa library.
// It owns the loader and the currently loaded automaton.
type Engine struct {
	loader  ports.SpecLoader
	locker  ports.DistributedLocker
	lockTTL time.Duration
	parser  *compiler.Parser
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	strict  bool
	Name    string

	mu      sync.Mutex // single writer for Load
	current atomic.Pointer[domain.Automaton]
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom SpecLoader, bypassing the default file loader.
func WithLoader(l ports.SpecLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLocker serializes loads across replicas with a distributed lock.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = l
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStrict toggles eager validation of specifications (default true).
// See domain.WithStrict for the exact rules.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// New initializes a new Engine.
// By default, it reads the specification file at specPath.
// If WithLoader option is provided, specPath can be empty and is only used as a label.
// New does not load anything; call Load before classifying.
func New(specPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{strict: true, lockTTL: 30 * time.Second}

	// Apply Options first to check if a loader is provided
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if specPath == "" {
			return nil, fmt.Errorf("specPath is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(specPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.loader = file.NewLoader(absPath)
	}
	if specPath != "" {
		eng.Name = filepath.Base(specPath)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("automaton", eng.Name)
	}

	eng.parser = compiler.NewParser(compiler.WithStrict(eng.strict))
	return eng, nil
}

// Load fetches, parses and builds the specification, then atomically replaces the
// current automaton. On any error the previous automaton stays in place.
func (e *Engine) Load(ctx context.Context) (*domain.Automaton, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, reloadLockKey, e.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire reload lock: %w", err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				e.logger.Warn("failed to release reload lock", "err", err)
			}
		}()
	}

	started := time.Now()
	a, source, err := e.compile(ctx)

	event := &domain.LoadEvent{
		EventBase: domain.EventBase{Timestamp: started, Type: domain.EventLoad, Duration: time.Since(started)},
		Source:    source,
		Err:       err,
	}
	if a != nil {
		event.States = len(a.States())
		event.Symbols = len(a.Alphabet())
	}
	if e.hooks.OnLoad != nil {
		e.hooks.OnLoad(ctx, event)
	}

	if err != nil {
		e.logger.Warn("load failed, keeping previous automaton", "source", source, "err", err)
		return nil, err
	}

	e.current.Store(a)
	e.logger.Info("automaton loaded", "source", source, "states", event.States, "symbols", event.Symbols)
	return a, nil
}

func (e *Engine) compile(ctx context.Context) (*domain.Automaton, string, error) {
	spec, err := e.loader.Load(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load specification: %w", err)
	}
	format, err := compiler.ParseFormat(spec.Format)
	if err != nil {
		return nil, spec.Source, err
	}
	def, err := e.parser.Parse(spec.Data, format)
	if err != nil {
		return nil, spec.Source, fmt.Errorf("failed to parse %s: %w", spec.Source, err)
	}
	a, err := domain.Build(def, domain.WithStrict(e.strict))
	if err != nil {
		return nil, spec.Source, fmt.Errorf("failed to build %s: %w", spec.Source, err)
	}
	return a, spec.Source, nil
}

// Current returns the loaded automaton, or domain.ErrNotLoaded.
func (e *Engine) Current() (*domain.Automaton, error) {
	a := e.current.Load()
	if a == nil {
		return nil, domain.ErrNotLoaded
	}
	return a, nil
}

// Classify reports whether the current automaton accepts symbols.
func (e *Engine) Classify(ctx context.Context, symbols []domain.Symbol) (bool, error) {
	a, err := e.Current()
	if err != nil {
		return false, err
	}

	started := time.Now()
	ok, err := a.Classify(symbols)
	if e.hooks.OnClassify != nil {
		e.hooks.OnClassify(ctx, &domain.ClassifyEvent{
			EventBase: domain.EventBase{Timestamp: started, Type: domain.EventClassify, Duration: time.Since(started)},
			Length:    len(symbols),
			Accepted:  ok,
			Err:       err,
		})
	}
	return ok, err
}

// ClassifyLine splits a comma separated line into symbols and classifies it.
func (e *Engine) ClassifyLine(ctx context.Context, line string) (bool, error) {
	return e.Classify(ctx, compiler.ParseSymbols(line))
}

// Trace returns the states visited on symbols by the current automaton.
func (e *Engine) Trace(ctx context.Context, symbols []domain.Symbol) ([]string, error) {
	a, err := e.Current()
	if err != nil {
		return nil, err
	}
	return a.Trace(symbols)
}

// Watch reloads the automaton every time the loader reports a change, until ctx is
// done. Failed reloads are logged and the previous automaton keeps serving.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) error {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return fmt.Errorf("current loader does not support watching")
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	e.logger.Info("watching specification for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, open := <-changes:
			if !open {
				return nil
			}
			// Load logs its own failures.
			_, _ = e.Load(ctx)
		}
	}
}

// Loader returns the underlying SpecLoader used by the engine.
func (e *Engine) Loader() ports.SpecLoader {
	return e.loader
}
