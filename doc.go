/*
Package dfa loads a deterministic finite automaton (DFA) from a specification and
classifies input strings as accepted or rejected.

The automaton is compiled once per load into an immutable value. The Engine keeps the
current automaton behind an atomic pointer: reloads build a fresh automaton and swap it
in only when it is valid, so readers never observe a partial update and a broken
specification never replaces a working one.

# Specification

The default text format is line oriented:

	q0,q1          states
	0,1            alphabet
	q0             start state
	q1             final states
	q0,0,q0        |states| x |alphabet| transition records
	q0,1,q1
	q1,0,q0
	q1,1,q1

YAML and JSON documents with the keys states, alphabet, start, final and
transitions (or a nested table) are accepted as well.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/dfa"
	)

	func main() {
		eng, err := dfa.New("dfa.txt")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if _, err := eng.Load(ctx); err != nil {
			log.Fatal(err)
		}

		ok, err := eng.ClassifyLine(ctx, "0,1")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(ok) // true
	}
*/
package dfa
