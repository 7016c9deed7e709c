/*
Package domain contains the core model of a deterministic finite automaton.

It defines the states, the alphabet and the transition function, and the two
algorithms that operate on them: building a consistent automaton from a
Definition and simulating it over a sequence of symbols. This package is kept
pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Symbol: an opaque input token. Multi-character symbols are allowed.
  - State: a named node with start/final flags and outgoing rules keyed by Symbol.
  - Automaton: the immutable registry of states, the alphabet and the start state.
  - Definition: the serializable description an Automaton is built from.
*/
package domain
