package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/dfa/pkg/adapters/file"
	"github.com/aretw0/dfa/pkg/ports"
	contract "github.com/aretw0/dfa/pkg/ports/tests"
)

func TestLoader_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dfa.yaml")
	data := []byte("states: [a]\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	contract.SpecLoaderContractTest(t, file.NewLoader(path), &ports.Spec{Data: data, Format: "yaml"})
}

func TestLoader_StoreContract(t *testing.T) {
	contract.SpecStoreContractTest(t, file.NewLoader(filepath.Join(t.TempDir(), "dfa.txt")))
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := file.NewLoader(filepath.Join(t.TempDir(), "nope.txt")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSink_ReplacesPreviousContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale\nstale\nstale\n"), 0644))

	sink, err := file.CreateSink(path)
	require.NoError(t, err)
	_, err = sink.Write([]byte("accept\n"))
	require.NoError(t, err)

	// Not visible until Close.
	before, _ := os.ReadFile(path)
	assert.Equal(t, "stale\nstale\nstale\n", string(before))

	require.NoError(t, sink.Close())
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "accept\n", string(after))

	_, err = sink.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)

	entries, _ := os.ReadDir(filepath.Dir(path))
	assert.Len(t, entries, 1, "temp file should be gone")
}

func TestSink_Abort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.txt")
	require.NoError(t, os.WriteFile(path, []byte("keep\n"), 0644))

	sink, err := file.CreateSink(path)
	require.NoError(t, err)
	_, _ = sink.Write([]byte("discard\n"))
	sink.Abort()

	data, _ := os.ReadFile(path)
	assert.Equal(t, "keep\n", string(data))
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1)
}

func TestLoader_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dfa.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	loader := file.NewLoader(path)
	loader.Debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}
}
