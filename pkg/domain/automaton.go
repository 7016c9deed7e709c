package domain

import (
	"sort"
	"strings"
)

// Automaton is an immutable deterministic finite automaton.
// It is safe for concurrent use once Build returns.
type Automaton struct {
	states   map[string]*State
	order    []string
	alphabet map[Symbol]struct{}
	symbols  []Symbol
	start    *State
}

// Start returns the entry state.
func (a *Automaton) Start() *State { return a.start }

// State looks up a state by name.
func (a *Automaton) State(name string) (*State, bool) {
	st, ok := a.states[name]
	return st, ok
}

// States returns every state in declaration order.
func (a *Automaton) States() []*State {
	out := make([]*State, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.states[name])
	}
	return out
}

// Finals returns the accepting states in declaration order.
func (a *Automaton) Finals() []*State {
	var out []*State
	for _, name := range a.order {
		if st := a.states[name]; st.final {
			out = append(out, st)
		}
	}
	return out
}

// Alphabet returns the symbols in declaration order.
func (a *Automaton) Alphabet() []Symbol {
	out := make([]Symbol, len(a.symbols))
	copy(out, a.symbols)
	return out
}

// HasSymbol reports whether sym belongs to the alphabet.
func (a *Automaton) HasSymbol(sym Symbol) bool {
	_, ok := a.alphabet[sym]
	return ok
}

// Step moves from one state on a single symbol.
// Symbols outside the alphabet fail even if a stray rule exists for them.
func (a *Automaton) Step(from *State, sym Symbol) (*State, error) {
	if !a.HasSymbol(sym) {
		return nil, &MissingTransitionError{State: from.name, Symbol: sym}
	}
	name, err := from.Read(sym)
	if err != nil {
		return nil, err
	}
	next, ok := a.states[name]
	if !ok {
		return nil, &UnknownStateError{Name: name, Role: "destination"}
	}
	return next, nil
}

// Classify runs the automaton over symbols and reports acceptance.
// The empty sequence tests the start state.
func (a *Automaton) Classify(symbols []Symbol) (bool, error) {
	current := a.start
	for _, sym := range symbols {
		next, err := a.Step(current, sym)
		if err != nil {
			return false, err
		}
		current = next
	}
	return current.final, nil
}

// Trace returns the names of the states visited while reading symbols, starting with
// the start state. On error the path up to the failing state is returned with it.
func (a *Automaton) Trace(symbols []Symbol) ([]string, error) {
	current := a.start
	path := make([]string, 0, len(symbols)+1)
	path = append(path, current.name)
	for _, sym := range symbols {
		next, err := a.Step(current, sym)
		if err != nil {
			return path, err
		}
		current = next
		path = append(path, current.name)
	}
	return path, nil
}

// MissingTransitions lists every (state, symbol) pair without a rule, in declaration order.
func (a *Automaton) MissingTransitions() []*MissingTransitionError {
	var missing []*MissingTransitionError
	for _, name := range a.order {
		st := a.states[name]
		for _, sym := range a.symbols {
			if _, err := st.Read(sym); err != nil {
				missing = append(missing, &MissingTransitionError{State: name, Symbol: sym})
			}
		}
	}
	return missing
}

// Definition converts the automaton back into its serializable form.
// Rules are emitted per state in declaration order, then by alphabet order; stray
// rules on symbols outside the alphabet (lazy mode) follow sorted by symbol.
func (a *Automaton) Definition() *Definition {
	def := &Definition{
		States:   append([]string(nil), a.order...),
		Alphabet: a.Alphabet(),
		Start:    a.start.name,
	}
	for _, st := range a.Finals() {
		def.Finals = append(def.Finals, st.name)
	}
	for _, name := range a.order {
		st := a.states[name]
		for _, sym := range a.symbols {
			if to, err := st.Read(sym); err == nil {
				def.Rules = append(def.Rules, Rule{From: name, Symbol: sym, To: to})
			}
		}
		var extra []string
		for sym := range st.transitions {
			if !a.HasSymbol(sym) {
				extra = append(extra, string(sym))
			}
		}
		sort.Strings(extra)
		for _, sym := range extra {
			def.Rules = append(def.Rules, Rule{From: name, Symbol: Symbol(sym), To: st.transitions[Symbol(sym)]})
		}
	}
	return def
}

// String renders the full automaton for debugging. The format is not stable.
func (a *Automaton) String() string {
	var sb strings.Builder
	sb.WriteString("States:\n")
	for _, st := range a.States() {
		sb.WriteString("  ")
		sb.WriteString(st.String())
		sb.WriteString("\n")
	}
	syms := make([]string, len(a.symbols))
	for i, s := range a.symbols {
		syms[i] = string(s)
	}
	sb.WriteString("Alphabet: {")
	sb.WriteString(strings.Join(syms, ", "))
	sb.WriteString("}")
	return sb.String()
}
