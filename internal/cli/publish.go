package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/dfa/internal/compiler"
	"github.com/aretw0/dfa/internal/config"
	"github.com/aretw0/dfa/pkg/adapters/redis"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/ports"
)

// Publish validates the specification file at path and uploads it to the configured
// redis key. Watching replicas pick it up through the store's change channel.
func Publish(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string) error {
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("publish needs a redis address (--redis-addr or DFA_REDIS_ADDR)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	format := compiler.FormatFromPath(path)

	// Refuse to publish something replicas would reject on reload.
	def, err := compiler.NewParser(compiler.WithStrict(cfg.Strict)).Parse(data, format)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, err := domain.Build(def, domain.WithStrict(cfg.Strict)); err != nil {
		return fmt.Errorf("failed to build %s: %w", path, err)
	}

	store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithKey(cfg.Redis.Key))
	defer store.Close()

	if err := store.Save(ctx, &ports.Spec{Data: data, Format: string(format), Source: path}); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	logger.Info("specification published", "path", path, "key", cfg.Redis.Key, "states", len(def.States))
	return nil
}
