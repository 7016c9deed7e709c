package runner

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/aretw0/dfa/pkg/domain"
)

// Verdict is the outcome written for one input line.
type Verdict string

const (
	VerdictAccept Verdict = "accept"
	VerdictReject Verdict = "reject"
)

// Result is the outcome of one input line.
type Result struct {
	Line    int
	Input   []domain.Symbol
	Verdict Verdict
	Err     error
}

// ResultHandler receives results in input order.
type ResultHandler interface {
	Handle(res Result) error
	Flush() error
}

// TextHandler writes one "accept"/"reject" line per result.
type TextHandler struct {
	Writer *bufio.Writer
}

// NewTextHandler creates a handler for plain text output.
func NewTextHandler(w io.Writer) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	return &TextHandler{Writer: bufio.NewWriter(w)}
}

func (h *TextHandler) Handle(res Result) error {
	if _, err := h.Writer.WriteString(string(res.Verdict)); err != nil {
		return err
	}
	return h.Writer.WriteByte('\n')
}

func (h *TextHandler) Flush() error {
	return h.Writer.Flush()
}

// JSONHandler implements ResultHandler for structured JSON-Lines output.
type JSONHandler struct {
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for NDJSON output.
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{Encoder: json.NewEncoder(w)}
}

type jsonRecord struct {
	Line    int             `json:"line"`
	Input   []domain.Symbol `json:"input"`
	Verdict Verdict         `json:"verdict"`
	Error   string          `json:"error,omitempty"`
}

func (h *JSONHandler) Handle(res Result) error {
	rec := jsonRecord{Line: res.Line, Input: res.Input, Verdict: res.Verdict}
	if rec.Input == nil {
		rec.Input = []domain.Symbol{}
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return h.Encoder.Encode(rec)
}

func (h *JSONHandler) Flush() error {
	return nil
}
