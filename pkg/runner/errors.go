package runner

import (
	"fmt"
)

// LineError ties a classification failure to its 1-based input line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// BatchError collects the lines that failed under PolicyIsolate.
type BatchError struct {
	Errors []*LineError
	Total  int
}

func (e *BatchError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d of %d lines failed; first: %v", len(e.Errors), e.Total, e.Errors[0])
}

// Unwrap exposes every line error to errors.Is / errors.As.
func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, le := range e.Errors {
		out[i] = le
	}
	return out
}
