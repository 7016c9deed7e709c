package graph

import (
	"strings"

	"github.com/aretw0/dfa/pkg/domain"
)

// edge is every symbol leading from one state to another, merged into one arrow.
type edge struct {
	From, To string
	Symbols  []string
}

func (e edge) Label() string {
	return strings.Join(e.Symbols, ", ")
}

// edges groups the transitions of a in declaration order.
func edges(a *domain.Automaton) []edge {
	var out []edge
	for _, st := range a.States() {
		index := map[string]int{}
		for _, sym := range a.Alphabet() {
			to, err := st.Read(sym)
			if err != nil {
				continue
			}
			i, ok := index[to]
			if !ok {
				i = len(out)
				index[to] = i
				out = append(out, edge{From: st.Name(), To: to})
			}
			out[i].Symbols = append(out[i].Symbols, string(sym))
		}
	}
	return out
}
