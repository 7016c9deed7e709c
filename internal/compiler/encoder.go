package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/dfa/pkg/domain"
)

// Encode serializes def in the requested format. The text form is the inverse of
// ParseText for complete definitions.
func Encode(def *domain.Definition, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(def, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return EncodeText(def), nil
	}
}

// EncodeText writes the line-oriented format.
func EncodeText(def *domain.Definition) []byte {
	var sb strings.Builder
	sb.WriteString(strings.Join(def.States, ","))
	sb.WriteByte('\n')
	syms := make([]string, len(def.Alphabet))
	for i, s := range def.Alphabet {
		syms[i] = string(s)
	}
	sb.WriteString(strings.Join(syms, ","))
	sb.WriteByte('\n')
	sb.WriteString(def.Start)
	sb.WriteByte('\n')
	sb.WriteString(strings.Join(def.Finals, ","))
	sb.WriteByte('\n')
	for _, r := range def.Rules {
		fmt.Fprintf(&sb, "%s,%s,%s\n", r.From, string(r.Symbol), r.To)
	}
	return []byte(sb.String())
}
