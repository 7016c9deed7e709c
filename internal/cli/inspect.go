package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/dfa/internal/compiler"
	"github.com/aretw0/dfa/internal/config"
	"github.com/aretw0/dfa/internal/presentation/graph"
	"github.com/aretw0/dfa/internal/presentation/tui"
	"github.com/aretw0/dfa/internal/validator"
	"github.com/aretw0/dfa/pkg/domain"
)

// loadAutomaton builds an engine from cfg and loads it once.
func loadAutomaton(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*domain.Automaton, string, error) {
	engine, closeEngine, err := createEngine(EngineOptions{Config: cfg, Logger: logger})
	if err != nil {
		return nil, "", err
	}
	defer closeEngine()

	a, err := engine.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	return a, engine.Name, nil
}

// Validate loads the specification and reports structural findings to w.
// It returns an error when the specification does not load or has missing transitions
// (the latter only possible with strict mode off).
func Validate(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer) error {
	a, name, err := loadAutomaton(ctx, cfg, logger)
	if err != nil {
		return err
	}

	rep := validator.Check(a)
	for _, m := range rep.Missing {
		fmt.Fprintf(w, "error: %v\n", m)
	}
	for _, warning := range rep.Warnings() {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if err := validator.Validate(a); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s is valid: %d states, %d symbols ✅\n", name, len(a.States()), len(a.Alphabet()))
	return nil
}

// GraphOptions configures Graph.
type GraphOptions struct {
	Format string // mermaid or dot
	Input  string // optional input whose path is highlighted
}

// Graph writes a diagram of the automaton to w.
func Graph(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer, opts GraphOptions) error {
	a, _, err := loadAutomaton(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if opts.Input != "" {
		path, err := a.Trace(compiler.ParseSymbols(opts.Input))
		if err != nil {
			logger.Warn("input stops early", "err", err)
		}
		overlay = &graph.GraphOverlay{VisitedNodes: path, CurrentNode: path[len(path)-1]}
	}

	switch opts.Format {
	case "", "mermaid":
		_, err = io.WriteString(w, graph.GenerateMermaid(a, overlay))
	case "dot":
		_, err = io.WriteString(w, graph.GenerateDOT(a, overlay))
	default:
		return fmt.Errorf("unknown graph format %q (want mermaid or dot)", opts.Format)
	}
	return err
}

// Describe renders the transition table as Markdown, styled for the terminal
// unless plain is set.
func Describe(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer, plain bool) error {
	a, name, err := loadAutomaton(ctx, cfg, logger)
	if err != nil {
		return err
	}

	render := tui.PlainRenderer
	if !plain {
		if render, err = tui.NewRenderer(0); err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
	}
	out, err := render(graph.GenerateMarkdown(name, a))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
