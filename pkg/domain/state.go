package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is a single input token drawn from the alphabet.
type Symbol string

// Symbols converts plain strings into a symbol sequence.
func Symbols(values ...string) []Symbol {
	out := make([]Symbol, len(values))
	for i, v := range values {
		out[i] = Symbol(v)
	}
	return out
}

// State is a node of the automaton.
// Transitions hold destination names, not pointers: the owning Automaton resolves them,
// so cycles and self loops never create ownership cycles.
type State struct {
	name        string
	start       bool
	final       bool
	transitions map[Symbol]string
}

// NewState creates a state with no rules that is neither start nor final.
func NewState(name string) *State {
	return &State{
		name:        name,
		transitions: make(map[Symbol]string),
	}
}

// Name returns the unique identifier of the state.
func (s *State) Name() string { return s.name }

// IsStart reports whether this is the automaton's entry state.
func (s *State) IsStart() bool { return s.start }

// IsFinal reports whether the state accepts.
func (s *State) IsFinal() bool { return s.final }

// AddRule registers the destination reached on symbol.
// A later call for the same symbol replaces the earlier destination.
func (s *State) AddRule(symbol Symbol, destination string) {
	s.transitions[symbol] = destination
}

// Read returns the name of the state reached on symbol.
func (s *State) Read(symbol Symbol) (string, error) {
	dest, ok := s.transitions[symbol]
	if !ok {
		return "", &MissingTransitionError{State: s.name, Symbol: symbol}
	}
	return dest, nil
}

// Transitions returns a copy of the outgoing rules.
func (s *State) Transitions() map[Symbol]string {
	out := make(map[Symbol]string, len(s.transitions))
	for k, v := range s.transitions {
		out[k] = v
	}
	return out
}

func (s *State) String() string {
	keys := make([]string, 0, len(s.transitions))
	for sym := range s.transitions {
		keys = append(keys, string(sym))
	}
	sort.Strings(keys)

	rules := make([]string, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, k+":"+s.transitions[Symbol(k)])
	}

	return fmt.Sprintf("Name: %s, Start: %t, Final: %t, Transition Rules: %s",
		s.name, s.start, s.final, strings.Join(rules, ", "))
}
