package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/dfa/pkg/adapters/memory"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/ports"
	contract "github.com/aretw0/dfa/pkg/ports/tests"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	text := "q0\na\nq0\nq0\nq0,a,q0\n"
	loader := memory.NewLoader(text)

	contract.SpecLoaderContractTest(t, loader, &ports.Spec{Data: []byte(text), Format: "text"})
}

func TestInMemoryLoader_StoreContract(t *testing.T) {
	contract.SpecStoreContractTest(t, memory.NewLoader(""))
}

func TestNewFromDefinition(t *testing.T) {
	loader, err := memory.NewFromDefinition(&domain.Definition{
		States:   []string{"s"},
		Alphabet: domain.Symbols("x"),
		Start:    "s",
		Finals:   []string{"s"},
		Rules:    []domain.Rule{{From: "s", Symbol: "x", To: "s"}},
	})
	require.NoError(t, err)

	spec, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s\nx\ns\ns\ns,x,s\n", string(spec.Data))

	_, err = memory.NewFromDefinition(nil)
	assert.Error(t, err)
}

func TestInMemoryLoader_Watch(t *testing.T) {
	loader := memory.NewLoader("")
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, loader.Save(context.Background(), &ports.Spec{Data: []byte("x"), Format: "text"}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}
