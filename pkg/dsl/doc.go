/*
Package dsl provides a fluent Go API for constructing automata without a specification file.

It is useful for tests, generated automata and embedding a fixed automaton in a binary.

Example usage:

	b := dsl.New().Alphabet("0", "1")

	b.Add("q0").Start().
		On("0", "q0").
		On("1", "q1")

	b.Add("q1").Final().
		On("0", "q0").
		On("1", "q1")

	a, err := b.Build()
	// ... or hand b.Loader() to dfa.New(...)
*/
package dsl
