package dfa_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/dfa"
	"github.com/aretw0/dfa/pkg/adapters/memory"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/dsl"
)

// ExampleNew_memory loads a text specification held in memory and classifies a few lines.
func ExampleNew_memory() {
	// Binary strings ending in 1.
	loader := memory.NewLoader("q0,q1\n0,1\nq0\nq1\nq0,0,q0\nq0,1,q1\nq1,0,q0\nq1,1,q1\n")

	// Path is empty because a loader is provided.
	engine, err := dfa.New("", dfa.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := engine.Load(ctx); err != nil {
		log.Fatal(err)
	}

	for _, line := range []string{"0,1", "1,0", ""} {
		ok, err := engine.ClassifyLine(ctx, line)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%q accepted=%v\n", line, ok)
	}

	_, err = engine.ClassifyLine(ctx, "0,2")
	fmt.Println(errors.Is(err, domain.ErrMissingTransition))

	// Output:
	// "0,1" accepted=true
	// "1,0" accepted=false
	// "" accepted=false
	// true
}

// ExampleEngine_Trace builds the automaton with the DSL and prints the visited states.
func ExampleEngine_Trace() {
	b := dsl.New().Alphabet("a", "b")
	b.Add("even").Start().Final().Loop("b").On("a", "odd")
	b.Add("odd").Loop("b").On("a", "even")

	loader, err := b.Loader()
	if err != nil {
		log.Fatal(err)
	}
	engine, err := dfa.New("", dfa.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := engine.Load(ctx); err != nil {
		log.Fatal(err)
	}

	path, err := engine.Trace(ctx, domain.Symbols("a", "b", "a"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(path)

	// Output:
	// [even odd odd even]
}
