package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/dfa/pkg/domain"
)

// Report is the result of a structural check of an automaton.
type Report struct {
	Missing       []*domain.MissingTransitionError
	Unreachable   []string // states the start state never reaches
	Dead          []string // states that cannot reach any final state
	EmptyLanguage bool
}

// OK reports whether the transition function is total.
func (r Report) OK() bool {
	return len(r.Missing) == 0
}

// Warnings lists the findings that do not make the automaton unusable.
func (r Report) Warnings() []string {
	var out []string
	for _, name := range r.Unreachable {
		out = append(out, fmt.Sprintf("state '%s' is unreachable from the start state", name))
	}
	for _, name := range r.Dead {
		out = append(out, fmt.Sprintf("state '%s' cannot reach a final state", name))
	}
	if r.EmptyLanguage {
		out = append(out, "the automaton accepts no input")
	}
	return out
}

// Check crawls the automaton from its start state and collects structural findings.
// States and symbols are visited in declaration order so the report is stable.
func Check(a *domain.Automaton) Report {
	var rep Report
	rep.Missing = a.MissingTransitions()

	// Forward crawl from start, recording reverse edges for the dead-state pass.
	visited := map[string]bool{}
	reverse := map[string][]string{}
	for _, st := range a.States() {
		for _, sym := range a.Alphabet() {
			if next, err := a.Step(st, sym); err == nil {
				reverse[next.Name()] = append(reverse[next.Name()], st.Name())
			}
		}
	}

	queue := []*domain.State{a.Start()}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current.Name()] {
			continue
		}
		visited[current.Name()] = true

		for _, sym := range a.Alphabet() {
			next, err := a.Step(current, sym)
			if err != nil {
				continue // reported as missing
			}
			if !visited[next.Name()] {
				queue = append(queue, next)
			}
		}
	}

	// Backward crawl from the final states.
	live := map[string]bool{}
	var back []string
	for _, st := range a.Finals() {
		back = append(back, st.Name())
	}
	for len(back) > 0 {
		name := back[0]
		back = back[1:]
		if live[name] {
			continue
		}
		live[name] = true
		for _, prev := range reverse[name] {
			if !live[prev] {
				back = append(back, prev)
			}
		}
	}

	for _, st := range a.States() {
		if !visited[st.Name()] {
			rep.Unreachable = append(rep.Unreachable, st.Name())
		}
		if !live[st.Name()] {
			rep.Dead = append(rep.Dead, st.Name())
		}
	}
	rep.EmptyLanguage = !live[a.Start().Name()]

	return rep
}

// Error lists the missing transitions of a partial automaton.
type Error struct {
	Missing []*domain.MissingTransitionError
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		lines[i] = m.Error()
	}
	return fmt.Sprintf("found %d errors:\n- %s", len(lines), strings.Join(lines, "\n- "))
}

func (e *Error) Unwrap() []error {
	out := make([]error, len(e.Missing))
	for i, m := range e.Missing {
		out[i] = m
	}
	return out
}

// Validate returns an *Error when the transition function is not total.
// The error matches domain.ErrMissingTransition.
func Validate(a *domain.Automaton) error {
	rep := Check(a)
	if rep.OK() {
		return nil
	}
	return &Error{Missing: rep.Missing}
}
