package ports

import "context"

// Spec is a raw specification as fetched from a backend.
type Spec struct {
	// Data holds the undecoded document.
	Data []byte
	// Format is "text", "yaml" or "json".
	Format string
	// Source describes where the spec came from (a path, a redis key...).
	Source string
}

// SpecLoader defines how the engine retrieves the automaton specification.
// This allows the storage layer (File, Memory, Redis) to be decoupled.
type SpecLoader interface {
	// Load fetches the current specification. It is called on every (re)load.
	Load(ctx context.Context) (*Spec, error)
}

// SpecStore is implemented by backends that can also receive specifications.
type SpecStore interface {
	SpecLoader

	// Save replaces the stored specification.
	Save(ctx context.Context, spec *Spec) error
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying spec changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
