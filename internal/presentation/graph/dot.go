package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dfa/pkg/domain"
)

// GenerateDOT produces a Graphviz digraph. Final states are drawn as double circles
// and an invisible point node marks the entry into the start state.
func GenerateDOT(a *domain.Automaton, overlay *GraphOverlay) string {
	visited := map[string]bool{}
	current := ""
	if overlay != nil {
		for _, id := range overlay.VisitedNodes {
			visited[id] = true
		}
		current = overlay.CurrentNode
	}

	var sb strings.Builder
	sb.WriteString("digraph DFA {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=circle];\n")
	sb.WriteString("\n")

	sb.WriteString("  __start [shape=point];\n")
	fmt.Fprintf(&sb, "  __start -> %s;\n", quoteDOT(a.Start().Name()))
	sb.WriteString("\n")

	for _, st := range a.States() {
		var attrs []string
		if st.IsFinal() {
			attrs = append(attrs, "shape=doublecircle")
		}
		switch {
		case st.Name() == current:
			attrs = append(attrs, "style=filled", "fillcolor=\"#ffeb3b\"")
		case visited[st.Name()]:
			attrs = append(attrs, "style=filled", "fillcolor=\"#e1f5fe\"")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&sb, "  %s;\n", quoteDOT(st.Name()))
			continue
		}
		fmt.Fprintf(&sb, "  %s [%s];\n", quoteDOT(st.Name()), strings.Join(attrs, ", "))
	}
	sb.WriteString("\n")

	for _, e := range edges(a) {
		fmt.Fprintf(&sb, "  %s -> %s [label=%s];\n", quoteDOT(e.From), quoteDOT(e.To), quoteDOT(e.Label()))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func quoteDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}
