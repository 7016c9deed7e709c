package compiler

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/dfa/internal/dto"
	"github.com/aretw0/dfa/pkg/domain"
)

// Format identifies the serialization of a specification.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from the file extension. Anything that is not
// YAML or JSON is treated as the line-oriented text format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// ParseFormat validates a user supplied format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText, "txt":
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown specification format %q", s)
	}
}

// Parser converts raw specification bytes into a domain.Definition.
type Parser struct {
	strict bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithStrict rejects non-blank lines after the last transition record (default true).
func WithStrict(strict bool) ParserOption {
	return func(p *Parser) {
		p.strict = strict
	}
}

// NewParser creates a new parser instance.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{strict: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes data according to format.
func (p *Parser) Parse(data []byte, format Format) (*domain.Definition, error) {
	switch format {
	case FormatYAML, FormatJSON:
		return p.ParseStructured(data, format)
	default:
		return p.ParseText(bytes.NewReader(data))
	}
}

// ParseText reads the line-oriented format: states, alphabet, start, finals, then
// exactly |states| x |alphabet| "source,symbol,destination" records. Duplicate names
// and symbols count once, matching how the automaton keys them.
func (p *Parser) ParseText(r io.Reader) (*domain.Definition, error) {
	reader := bufio.NewReader(r)

	lineNo := 0
	var readErr error
	next := func() (string, bool) {
		line, err := ReadLine(reader)
		if err != nil {
			if err != io.EOF {
				readErr = err
			}
			return "", false
		}
		lineNo++
		return strings.TrimRight(line, " \t"), true
	}

	headers := []string{"state list", "alphabet", "start state", "final state list"}
	var fields [4]string
	def := &domain.Definition{}
	for i, what := range headers {
		line, ok := next()
		if !ok {
			if readErr != nil {
				return nil, fmt.Errorf("failed to read specification: %w", readErr)
			}
			return nil, &domain.MalformedSpecificationError{Line: lineNo + 1, Reason: "missing " + what}
		}
		fields[i] = line
		def.Lines[i] = lineNo
	}

	def.States = SplitFields(fields[0])
	for _, s := range SplitFields(fields[1]) {
		def.Alphabet = append(def.Alphabet, domain.Symbol(s))
	}
	def.Start = strings.TrimSpace(fields[2])
	if fields[3] != "" {
		def.Finals = SplitFields(fields[3])
	}

	expected := countUnique(def.States) * countUnique(symbolsAsStrings(def.Alphabet))
	for i := 0; i < expected; i++ {
		line, ok := next()
		if !ok {
			if readErr != nil {
				return nil, fmt.Errorf("failed to read specification: %w", readErr)
			}
			return nil, &domain.MalformedSpecificationError{
				Line:   lineNo + 1,
				Reason: fmt.Sprintf("expected %d transition records, found %d", expected, i),
			}
		}
		parts := SplitFields(line)
		if len(parts) != 3 {
			return nil, &domain.MalformedSpecificationError{
				Line:   lineNo,
				Reason: fmt.Sprintf("transition record needs source,symbol,destination, got %q", line),
			}
		}
		def.Rules = append(def.Rules, domain.Rule{
			From:   parts[0],
			Symbol: domain.Symbol(parts[1]),
			To:     parts[2],
			Line:   lineNo,
		})
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		if p.strict && strings.TrimSpace(line) != "" {
			return nil, &domain.MalformedSpecificationError{
				Line:   lineNo,
				Reason: fmt.Sprintf("unexpected content after %d transition records", expected),
			}
		}
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read specification: %w", readErr)
	}

	return def, nil
}

// ParseStructured decodes a YAML or JSON document.
func (p *Parser) ParseStructured(data []byte, format Format) (*domain.Definition, error) {
	var raw map[string]any
	var err error
	if format == FormatJSON {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, &domain.MalformedSpecificationError{Reason: fmt.Sprintf("invalid %s: %v", format, err)}
	}
	if raw == nil {
		return nil, &domain.MalformedSpecificationError{Reason: "empty document"}
	}

	var wire dto.Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(ruleStringHook),
		WeaklyTypedInput: true,
		ErrorUnused:      p.strict,
		Result:           &wire,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &domain.MalformedSpecificationError{Reason: err.Error()}
	}

	return wire.ToDomain(), nil
}

// ruleStringHook lets transitions be written as "source,symbol,destination".
func ruleStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(dto.Rule{}) {
		return data, nil
	}
	return dto.ParseRuleString(data.(string))
}

// ReadLine returns the next line of r without its line ending. Lines have no length
// limit. A final line without a newline is returned as is; io.EOF means no more lines.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SplitFields splits a comma separated line and trims each field.
func SplitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseSymbols turns one batch input line into a symbol sequence.
// Surrounding whitespace is ignored and a blank line is the empty sequence.
func ParseSymbols(line string) []domain.Symbol {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := SplitFields(line)
	out := make([]domain.Symbol, len(parts))
	for i, s := range parts {
		out[i] = domain.Symbol(s)
	}
	return out
}

func countUnique(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func symbolsAsStrings(syms []domain.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = string(s)
	}
	return out
}
