package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/dfa"
	"github.com/aretw0/dfa/internal/config"
	"github.com/aretw0/dfa/pkg/adapters/redis"
	"github.com/aretw0/dfa/pkg/domain"
)

// reloadLockTTL bounds how long one replica may hold the redis reload lock.
const reloadLockTTL = 30 * time.Second

// lockPrefix namespaces the reload lock next to the spec key.
const lockPrefix = "dfa:lock:"

// EngineOptions carries what the commands add on top of the configuration.
type EngineOptions struct {
	Config *config.Config
	Logger *slog.Logger
	Hooks  domain.LifecycleHooks
}

// createEngine initializes a dfa engine with standard CLI conventions.
// With a redis address the specification is read from redis and every reload takes
// the redis lock; otherwise it is read from cfg.Spec on disk.
// The returned close func releases the redis connection and is never nil.
func createEngine(opts EngineOptions) (*dfa.Engine, func() error, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hooks := createDebugHooks(logger).Merge(opts.Hooks)
	engineOpts := []dfa.Option{
		dfa.WithLogger(logger),
		dfa.WithLifecycleHooks(hooks),
		dfa.WithStrict(cfg.Strict),
	}

	closer := func() error { return nil }
	specPath := cfg.Spec
	if cfg.Redis.Addr != "" {
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithKey(cfg.Redis.Key))
		engineOpts = append(engineOpts,
			dfa.WithLoader(store),
			dfa.WithLocker(redis.NewLocker(store.Client(), lockPrefix), reloadLockTTL),
		)
		closer = store.Close
		specPath = cfg.Redis.Key
		logger.Debug("using redis spec store", "addr", cfg.Redis.Addr, "key", cfg.Redis.Key)
	}

	engine, err := dfa.New(specPath, engineOpts...)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, closer, nil
}
