package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/dfa/internal/config"
	httpAdapter "github.com/aretw0/dfa/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/dfa/pkg/adapters/mcp"
	"github.com/aretw0/dfa/pkg/observability"
)

// shutdownTimeout gives outstanding requests a deadline for completion.
const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP API until ctx is done. With cfg.Watch the specification is
// reloaded whenever its source changes.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics("dfa", true)
	streams := httpAdapter.NewStreamManager()

	engine, closeEngine, err := createEngine(EngineOptions{
		Config: cfg,
		Logger: logger,
		Hooks:  metrics.Hooks().Merge(streams.Hooks()),
	})
	if err != nil {
		return err
	}
	defer closeEngine()

	if _, err := engine.Load(ctx); err != nil {
		return err
	}

	handler := httpAdapter.NewHandler(engine,
		httpAdapter.WithMetrics(metrics.Handler()),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithLogger(logger),
	)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting dfa server", "addr", srv.Addr, "automaton", engine.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("dfa server stopped gracefully")
		return nil
	})
	if cfg.Watch {
		g.Go(func() error {
			if err := engine.Watch(gctx); err != nil && !IsInterrupted(err) {
				return fmt.Errorf("watch failed: %w", err)
			}
			return nil
		})
	}

	return HandleExecutionError(g.Wait())
}

// ServeMCP exposes the automaton as MCP tools over stdio, or over SSE when sse is set.
func ServeMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger, sse bool) error {
	engine, closeEngine, err := createEngine(EngineOptions{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer closeEngine()

	if _, err := engine.Load(ctx); err != nil {
		return err
	}

	if cfg.Watch {
		go func() {
			if err := engine.Watch(ctx); err != nil && !IsInterrupted(err) {
				logger.Warn("watch stopped", "err", err)
			}
		}()
	}

	server := mcpAdapter.NewServer(engine, logger)
	if sse {
		return server.ServeSSE(ctx, cfg.Port)
	}
	return server.ServeStdio()
}
