package dfa_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/dfa"
	"github.com/aretw0/dfa/pkg/adapters/memory"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/ports"
)

const endsInOne = "q0,q1\n0,1\nq0\nq1\nq0,0,q0\nq0,1,q1\nq1,0,q0\nq1,1,q1\n"

// startsWithOne accepts strings whose first symbol is 1.
const startsWithOne = "s,yes,no\n0,1\ns\nyes\ns,0,no\ns,1,yes\nyes,0,yes\nyes,1,yes\nno,0,no\nno,1,no\n"

func TestEngine_FileIntegration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dfa.txt")
	require.NoError(t, os.WriteFile(path, []byte(endsInOne), 0644))

	eng, err := dfa.New(path)
	require.NoError(t, err)
	assert.Equal(t, "dfa.txt", eng.Name)

	ctx := context.Background()
	_, err = eng.Current()
	assert.ErrorIs(t, err, domain.ErrNotLoaded)

	_, err = eng.Load(ctx)
	require.NoError(t, err)

	cases := map[string]bool{"0,1": true, "1,0": false, "": false, "1,1,1": true}
	for line, want := range cases {
		got, err := eng.ClassifyLine(ctx, line)
		require.NoError(t, err, line)
		assert.Equal(t, want, got, line)
	}

	_, err = eng.ClassifyLine(ctx, "0,2")
	assert.ErrorIs(t, err, domain.ErrMissingTransition)
}

func TestEngine_RequiresPathOrLoader(t *testing.T) {
	_, err := dfa.New("")
	assert.Error(t, err)

	eng, err := dfa.New("", dfa.WithLoader(memory.NewLoader(endsInOne)))
	require.NoError(t, err)
	assert.Empty(t, eng.Name)
}

func TestEngine_FailedReloadKeepsPrevious(t *testing.T) {
	loader := memory.NewLoader(endsInOne)
	eng, err := dfa.New("mem", dfa.WithLoader(loader))
	require.NoError(t, err)

	ctx := context.Background()
	first, err := eng.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, loader.Save(ctx, &ports.Spec{Data: []byte("q0\n0\nghost\nq0\nq0,0,q0\n"), Format: "text"}))
	_, err = eng.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrUnknownState)

	current, err := eng.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestEngine_ReloadRoundTrip(t *testing.T) {
	eng, err := dfa.New("", dfa.WithLoader(memory.NewLoader(endsInOne)))
	require.NoError(t, err)
	ctx := context.Background()

	inputs := []string{"", "0", "1", "0,1", "1,0", "1,1,0,1"}
	classifyAll := func() []bool {
		out := make([]bool, len(inputs))
		for i, in := range inputs {
			ok, err := eng.ClassifyLine(ctx, in)
			require.NoError(t, err)
			out[i] = ok
		}
		return out
	}

	_, err = eng.Load(ctx)
	require.NoError(t, err)
	before := classifyAll()

	_, err = eng.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, classifyAll())
}

func TestEngine_ConcurrentClassifyDuringReload(t *testing.T) {
	loader := memory.NewLoader(endsInOne)
	eng, err := dfa.New("", dfa.WithLoader(loader))
	require.NoError(t, err)
	ctx := context.Background()
	_, err = eng.Load(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				// "1,1" is accepted by both automata.
				ok, err := eng.ClassifyLine(ctx, "1,1")
				assert.NoError(t, err)
				assert.True(t, ok)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		text := endsInOne
		if i%2 == 0 {
			text = startsWithOne
		}
		require.NoError(t, loader.Save(ctx, &ports.Spec{Data: []byte(text), Format: "text"}))
		_, err := eng.Load(ctx)
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestEngine_Hooks(t *testing.T) {
	var mu sync.Mutex
	var loads []*domain.LoadEvent
	var classifies []*domain.ClassifyEvent

	hooks := domain.LifecycleHooks{
		OnLoad: func(_ context.Context, e *domain.LoadEvent) {
			mu.Lock()
			defer mu.Unlock()
			loads = append(loads, e)
		},
		OnClassify: func(_ context.Context, e *domain.ClassifyEvent) {
			mu.Lock()
			defer mu.Unlock()
			classifies = append(classifies, e)
		},
	}

	eng, err := dfa.New("", dfa.WithLoader(memory.NewLoader(endsInOne)), dfa.WithLifecycleHooks(hooks))
	require.NoError(t, err)
	ctx := context.Background()
	_, err = eng.Load(ctx)
	require.NoError(t, err)
	_, err = eng.ClassifyLine(ctx, "0,1")
	require.NoError(t, err)

	require.Len(t, loads, 1)
	assert.Equal(t, 2, loads[0].States)
	assert.Equal(t, "memory", loads[0].Source)
	assert.NoError(t, loads[0].Err)

	require.Len(t, classifies, 1)
	assert.Equal(t, 2, classifies[0].Length)
	assert.True(t, classifies[0].Accepted)
}

type recordingLocker struct {
	mu    sync.Mutex
	keys  []string
	freed int
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.freed++
		return nil
	}, nil
}

func TestEngine_LoadTakesDistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	eng, err := dfa.New("", dfa.WithLoader(memory.NewLoader(endsInOne)), dfa.WithLocker(locker, time.Second))
	require.NoError(t, err)

	_, err = eng.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reload"}, locker.keys)
	assert.Equal(t, 1, locker.freed)
}

func TestEngine_LazyMode(t *testing.T) {
	partial := "q0,q1\n0,1\nq0\nq1\nq0,0,q0\nq0,1,q1\nq1,0,q0\nq1,0,q1\n"

	strict, err := dfa.New("", dfa.WithLoader(memory.NewLoader(partial)))
	require.NoError(t, err)
	_, err = strict.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedSpecification)

	lazy, err := dfa.New("", dfa.WithLoader(memory.NewLoader(partial)), dfa.WithStrict(false))
	require.NoError(t, err)
	_, err = lazy.Load(context.Background())
	require.NoError(t, err)

	ok, err := lazy.ClassifyLine(context.Background(), "1,0")
	require.NoError(t, err)
	assert.True(t, ok, "last rule for (q1, 0) wins")

	_, err = lazy.ClassifyLine(context.Background(), "1,1")
	assert.ErrorIs(t, err, domain.ErrMissingTransition)
}

func TestEngine_Watch(t *testing.T) {
	loader := memory.NewLoader(endsInOne)
	eng, err := dfa.New("", dfa.WithLoader(loader))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = eng.Load(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- eng.Watch(ctx) }()

	// Give the watcher time to subscribe before saving.
	assert.Eventually(t, func() bool {
		_ = loader.Save(context.Background(), &ports.Spec{Data: []byte(startsWithOne), Format: "text"})
		ok, err := eng.ClassifyLine(context.Background(), "1,0")
		return err == nil && ok
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestEngine_WatchUnsupported(t *testing.T) {
	eng, err := dfa.New("", dfa.WithLoader(staticLoader{}))
	require.NoError(t, err)
	assert.Error(t, eng.Watch(context.Background()))
}

type staticLoader struct{}

func (staticLoader) Load(context.Context) (*ports.Spec, error) {
	return &ports.Spec{Data: []byte(endsInOne), Format: "text", Source: "static"}, nil
}
