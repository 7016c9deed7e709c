package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/dfa/internal/compiler"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/ports"
)

// Loader implements ports.SpecStore and ports.Watchable in memory.
// It is mostly useful for tests and for embedding a fixed automaton.
type Loader struct {
	mu       sync.RWMutex
	spec     ports.Spec
	watchers []chan struct{}
}

// NewLoader creates a loader holding a text-format specification.
func NewLoader(text string) *Loader {
	return NewLoaderWithFormat([]byte(text), string(compiler.FormatText))
}

// NewLoaderWithFormat creates a loader holding data in the given format.
func NewLoaderWithFormat(data []byte, format string) *Loader {
	return &Loader{
		spec: ports.Spec{Data: append([]byte(nil), data...), Format: format, Source: "memory"},
	}
}

// NewFromDefinition serializes def to the text format.
// This handles encoding automatically, improving DX for tests.
func NewFromDefinition(def *domain.Definition) (*Loader, error) {
	if def == nil {
		return nil, fmt.Errorf("definition is nil")
	}
	return NewLoader(string(compiler.EncodeText(def))), nil
}

// Load returns a copy of the held specification.
func (l *Loader) Load(ctx context.Context) (*ports.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	spec := l.spec
	spec.Data = append([]byte(nil), l.spec.Data...)
	return &spec, nil
}

// Save replaces the held specification and notifies watchers.
func (l *Loader) Save(ctx context.Context, spec *ports.Spec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spec = ports.Spec{Data: append([]byte(nil), spec.Data...), Format: spec.Format, Source: "memory"}

	// Sends happen under the lock so Watch cannot close a channel mid-send.
	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default: // a reload is already pending
		}
	}
	return nil
}

// Watch signals after every Save until ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
