package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/dfa/pkg/ports"
)

// ErrSpecNotFound is returned when the configured key holds no specification.
var ErrSpecNotFound = errors.New("specification not found in redis")

// DefaultKey is the hash that stores the specification.
const DefaultKey = "dfa:spec"

// Store implements ports.SpecStore and ports.Watchable using Redis.
// The spec lives in a hash (data, format, updated_at); every Save publishes on
// "<key>:events" so replicas can hot-reload.
type Store struct {
	client *backend.Client
	key    string
}

type Option func(*Store)

// WithKey sets the hash key holding the specification.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		key:    DefaultKey,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) channel() string {
	return s.key + ":events"
}

// Load retrieves the specification from Redis.
func (s *Store) Load(ctx context.Context) (*ports.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, fmt.Errorf("%w: key %s", ErrSpecNotFound, s.key)
	}
	return &ports.Spec{
		Data:   []byte(data),
		Format: fields["format"],
		Source: "redis:" + s.key,
	}, nil
}

// Save persists the specification and notifies subscribers.
func (s *Store) Save(ctx context.Context, spec *ports.Spec) error {
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, s.key,
		"data", spec.Data,
		"format", spec.Format,
		"updated_at", time.Now().UTC().Format(time.RFC3339),
	)
	pipe.Publish(ctx, s.channel(), "reload")

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Watch subscribes to change notifications.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	// Wait for the subscription to be confirmed so no Save is missed after Watch returns.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel(), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
