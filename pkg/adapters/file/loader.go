package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/dfa/internal/compiler"
	"github.com/aretw0/dfa/pkg/ports"
)

// DefaultDebounce coalesces the burst of events editors emit for a single save.
const DefaultDebounce = 100 * time.Millisecond

// Loader implements ports.SpecStore and ports.Watchable on the local filesystem.
// The format is taken from the file extension (.yaml/.yml, .json, anything else is text).
type Loader struct {
	Path     string
	Debounce time.Duration
}

// NewLoader creates a loader for the specification at path.
func NewLoader(path string) *Loader {
	return &Loader{Path: path, Debounce: DefaultDebounce}
}

// Load reads the whole file.
func (l *Loader) Load(ctx context.Context) (*ports.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification: %w", err)
	}
	return &ports.Spec{
		Data:   data,
		Format: string(compiler.FormatFromPath(l.Path)),
		Source: l.Path,
	}, nil
}

// Save atomically replaces the file with spec.Data.
func (l *Loader) Save(ctx context.Context, spec *ports.Spec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sink, err := CreateSink(l.Path)
	if err != nil {
		return err
	}
	if _, err := sink.Write(spec.Data); err != nil {
		sink.Abort()
		return fmt.Errorf("failed to write specification: %w", err)
	}
	return sink.Close()
}

// Watch signals whenever the file is written, created or renamed into place.
// The parent directory is watched so editors that replace the file are still seen.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	target, err := filepath.Abs(l.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	debounce := l.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, _ := filepath.Abs(ev.Name)
				if name != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}
