package dsl

import (
	"fmt"

	"github.com/aretw0/dfa/pkg/adapters/memory"
	"github.com/aretw0/dfa/pkg/domain"
)

// Builder manages the automaton construction.
// States keep the order in which they were first added.
type Builder struct {
	order    []string
	states   map[string]*StateBuilder
	alphabet []domain.Symbol
	start    string
}

// New creates a new automaton builder.
func New() *Builder {
	return &Builder{
		states: make(map[string]*StateBuilder),
	}
}

// Alphabet appends symbols to the input alphabet.
func (b *Builder) Alphabet(symbols ...string) *Builder {
	b.alphabet = append(b.alphabet, domain.Symbols(symbols...)...)
	return b
}

// Add creates a new state.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{name: name, builder: b}
	b.states[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Definition returns the serializable form of everything added so far.
func (b *Builder) Definition() *domain.Definition {
	def := &domain.Definition{
		States:   append([]string(nil), b.order...),
		Alphabet: append([]domain.Symbol(nil), b.alphabet...),
		Start:    b.start,
	}
	for _, name := range b.order {
		sb := b.states[name]
		if sb.final {
			def.Finals = append(def.Finals, name)
		}
		def.Rules = append(def.Rules, sb.rules...)
	}
	return def
}

// Build compiles the automaton. Validation follows domain.Build.
func (b *Builder) Build(opts ...domain.BuildOption) (*domain.Automaton, error) {
	if b.start == "" {
		return nil, fmt.Errorf("no start state: mark one state with Start()")
	}
	return domain.Build(b.Definition(), opts...)
}

// Loader compiles the builder into a memory loader for dfa.New.
func (b *Builder) Loader() (*memory.Loader, error) {
	loader, err := memory.NewFromDefinition(b.Definition())
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	name    string
	final   bool
	rules   []domain.Rule
	builder *Builder
}

// Start makes this the start state, replacing any earlier choice.
func (s *StateBuilder) Start() *StateBuilder {
	s.builder.start = s.name
	return s
}

// Final marks the state as accepting.
func (s *StateBuilder) Final() *StateBuilder {
	s.final = true
	return s
}

// On adds the transition taken from this state when reading symbol.
// The destination does not need to exist yet.
func (s *StateBuilder) On(symbol, to string) *StateBuilder {
	s.rules = append(s.rules, domain.Rule{From: s.name, Symbol: domain.Symbol(symbol), To: to})
	return s
}

// Loop is shorthand for transitions back to the same state.
func (s *StateBuilder) Loop(symbols ...string) *StateBuilder {
	for _, sym := range symbols {
		s.On(sym, s.name)
	}
	return s
}

// Builder returns the parent builder, for chaining.
func (s *StateBuilder) Builder() *Builder {
	return s.builder
}
