package dto

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/dfa/pkg/domain"
)

// Definition is the wire shape of a structured (YAML/JSON) automaton file.
// It uses "mapstructure" tags so loosely typed documents (numeric symbols, a single
// final state written as a scalar) decode without ceremony.
type Definition struct {
	States      []string                     `json:"states" mapstructure:"states"`
	Alphabet    []string                     `json:"alphabet" mapstructure:"alphabet"`
	Start       string                       `json:"start" mapstructure:"start"`
	Final       []string                     `json:"final" mapstructure:"final"`
	Transitions []Rule                       `json:"transitions" mapstructure:"transitions"`
	Table       map[string]map[string]string `json:"table" mapstructure:"table"`
}

// Rule accepts both the long and the short key names.
type Rule struct {
	From     string `json:"from" mapstructure:"from"`
	FromFull string `json:"source" mapstructure:"source"`
	Symbol   string `json:"symbol" mapstructure:"symbol"`
	On       string `json:"on" mapstructure:"on"`
	To       string `json:"to" mapstructure:"to"`
	ToFull   string `json:"destination" mapstructure:"destination"`
}

// ParseRuleString splits the "source,symbol,destination" shorthand.
func ParseRuleString(s string) (Rule, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Rule{}, fmt.Errorf("transition %q: expected source,symbol,destination", s)
	}
	return Rule{
		From:   strings.TrimSpace(parts[0]),
		Symbol: strings.TrimSpace(parts[1]),
		To:     strings.TrimSpace(parts[2]),
	}, nil
}

// ToDomain converts the wire shape into a domain definition.
// Table entries are appended after the explicit transitions, sorted for determinism.
func (d *Definition) ToDomain() *domain.Definition {
	def := &domain.Definition{
		States: d.States,
		Start:  d.Start,
		Finals: d.Final,
	}
	for _, s := range d.Alphabet {
		def.Alphabet = append(def.Alphabet, domain.Symbol(s))
	}

	for _, r := range d.Transitions {
		from := r.From
		if from == "" {
			from = r.FromFull
		}
		sym := r.Symbol
		if sym == "" {
			sym = r.On
		}
		to := r.To
		if to == "" {
			to = r.ToFull
		}
		def.Rules = append(def.Rules, domain.Rule{From: from, Symbol: domain.Symbol(sym), To: to})
	}

	sources := make([]string, 0, len(d.Table))
	for from := range d.Table {
		sources = append(sources, from)
	}
	sort.Strings(sources)
	for _, from := range sources {
		row := d.Table[from]
		syms := make([]string, 0, len(row))
		for sym := range row {
			syms = append(syms, sym)
		}
		sort.Strings(syms)
		for _, sym := range syms {
			def.Rules = append(def.Rules, domain.Rule{From: from, Symbol: domain.Symbol(sym), To: row[sym]})
		}
	}

	return def
}
