package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownState is matched by UnknownStateError.
var ErrUnknownState = errors.New("unknown state")

// ErrMalformedSpecification is matched by MalformedSpecificationError.
var ErrMalformedSpecification = errors.New("malformed specification")

// ErrDuplicateState is matched by DuplicateStateError.
var ErrDuplicateState = errors.New("duplicate state")

// ErrMissingTransition is matched by MissingTransitionError.
var ErrMissingTransition = errors.New("missing transition")

// ErrNotLoaded is returned when an automaton is requested before the first successful load.
var ErrNotLoaded = errors.New("automaton not loaded")

// UnknownStateError reports a reference to a state that was never declared.
type UnknownStateError struct {
	Name string
	// Role describes where the reference came from: "start", "final", "source" or "destination".
	Role string
	// Line is the 1-based line in the source, or 0 when unknown.
	Line int
}

func (e *UnknownStateError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: unknown %s state %q", e.Line, e.Role, e.Name)
	}
	return fmt.Sprintf("unknown %s state %q", e.Role, e.Name)
}

func (e *UnknownStateError) Is(target error) bool {
	return target == ErrUnknownState
}

// MalformedSpecificationError reports a structural problem in the specification:
// missing header lines, wrong field counts, or (in strict mode) symbols outside the
// alphabet and an incomplete transition table.
type MalformedSpecificationError struct {
	Line   int
	Reason string
}

func (e *MalformedSpecificationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed specification: line %d: %s", e.Line, e.Reason)
	}
	return "malformed specification: " + e.Reason
}

func (e *MalformedSpecificationError) Is(target error) bool {
	return target == ErrMalformedSpecification
}

// DuplicateStateError is raised in strict mode when a state name is declared twice.
type DuplicateStateError struct {
	Name string
}

func (e *DuplicateStateError) Error() string {
	return fmt.Sprintf("duplicate state %q", e.Name)
}

func (e *DuplicateStateError) Is(target error) bool {
	return target == ErrDuplicateState
}

// MissingTransitionError is returned during simulation when the current state has no
// rule for the next symbol, or the symbol is not part of the alphabet.
type MissingTransitionError struct {
	State  string
	Symbol Symbol
}

func (e *MissingTransitionError) Error() string {
	return fmt.Sprintf("no transition from state %q on symbol %q", e.State, string(e.Symbol))
}

func (e *MissingTransitionError) Is(target error) bool {
	return target == ErrMissingTransition
}
