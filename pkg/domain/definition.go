package domain

import "fmt"

// Rule is one transition record: reading Symbol in From moves to To.
type Rule struct {
	From   string `json:"from" yaml:"from"`
	Symbol Symbol `json:"symbol" yaml:"symbol"`
	To     string `json:"to" yaml:"to"`

	// Line is the 1-based source line of the record, used in error messages.
	Line int `json:"-" yaml:"-"`
}

// Definition is the serializable description of an automaton.
type Definition struct {
	States   []string `json:"states" yaml:"states"`
	Alphabet []Symbol `json:"alphabet" yaml:"alphabet"`
	Start    string   `json:"start" yaml:"start"`
	Finals   []string `json:"final" yaml:"final"`
	Rules    []Rule   `json:"transitions" yaml:"transitions"`

	// Lines records where each header field was read from (states, alphabet, start, final).
	Lines [4]int `json:"-" yaml:"-"`
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	strict bool
}

// WithStrict toggles eager validation (default true).
//
// Strict mode rejects duplicate state names, rule symbols outside the alphabet,
// duplicate (state, symbol) rules and incomplete transition tables at build time.
// Lazy mode collapses duplicates, lets later rules win and leaves gaps to surface as
// MissingTransitionError during Classify.
func WithStrict(strict bool) BuildOption {
	return func(c *buildConfig) {
		c.strict = strict
	}
}

// Build validates def and produces an immutable Automaton.
func Build(def *Definition, opts ...BuildOption) (*Automaton, error) {
	cfg := buildConfig{strict: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if def == nil {
		return nil, &MalformedSpecificationError{Reason: "empty definition"}
	}

	a := &Automaton{
		states:   make(map[string]*State),
		alphabet: make(map[Symbol]struct{}),
	}

	// States before alphabet: rules reference both.
	if len(def.States) == 0 {
		return nil, &MalformedSpecificationError{Line: def.Lines[0], Reason: "no states declared"}
	}
	for _, name := range def.States {
		if name == "" {
			return nil, &MalformedSpecificationError{Line: def.Lines[0], Reason: "empty state name"}
		}
		if _, exists := a.states[name]; exists {
			if cfg.strict {
				return nil, &DuplicateStateError{Name: name}
			}
			a.states[name] = NewState(name)
			continue
		}
		a.states[name] = NewState(name)
		a.order = append(a.order, name)
	}

	if len(def.Alphabet) == 0 {
		return nil, &MalformedSpecificationError{Line: def.Lines[1], Reason: "empty alphabet"}
	}
	for _, sym := range def.Alphabet {
		if sym == "" && cfg.strict {
			return nil, &MalformedSpecificationError{Line: def.Lines[1], Reason: "empty symbol in alphabet"}
		}
		if _, exists := a.alphabet[sym]; exists {
			continue
		}
		a.alphabet[sym] = struct{}{}
		a.symbols = append(a.symbols, sym)
	}

	start, ok := a.states[def.Start]
	if !ok {
		return nil, &UnknownStateError{Name: def.Start, Role: "start", Line: def.Lines[2]}
	}
	start.start = true
	a.start = start

	if len(def.Finals) == 0 {
		return nil, &MalformedSpecificationError{Line: def.Lines[3], Reason: "at least one final state is required"}
	}
	for _, name := range def.Finals {
		st, ok := a.states[name]
		if !ok {
			return nil, &UnknownStateError{Name: name, Role: "final", Line: def.Lines[3]}
		}
		st.final = true
	}

	for _, r := range def.Rules {
		src, ok := a.states[r.From]
		if !ok {
			return nil, &UnknownStateError{Name: r.From, Role: "source", Line: r.Line}
		}
		if _, ok := a.states[r.To]; !ok {
			return nil, &UnknownStateError{Name: r.To, Role: "destination", Line: r.Line}
		}
		if cfg.strict {
			if !a.HasSymbol(r.Symbol) {
				return nil, &MalformedSpecificationError{
					Line:   r.Line,
					Reason: fmt.Sprintf("symbol %q is not in the alphabet", string(r.Symbol)),
				}
			}
			if _, err := src.Read(r.Symbol); err == nil {
				return nil, &MalformedSpecificationError{
					Line:   r.Line,
					Reason: fmt.Sprintf("duplicate rule for state %q on symbol %q", r.From, string(r.Symbol)),
				}
			}
		}
		src.AddRule(r.Symbol, r.To)
	}

	if cfg.strict {
		if missing := a.MissingTransitions(); len(missing) > 0 {
			return nil, &MalformedSpecificationError{
				Reason: fmt.Sprintf("transition function is not total: %d missing rule(s), first: %s",
					len(missing), describeMissing(missing[0])),
			}
		}
	}

	return a, nil
}

func describeMissing(e *MissingTransitionError) string {
	return fmt.Sprintf("%s on %q", e.State, string(e.Symbol))
}
