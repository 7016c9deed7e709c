package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dfa/pkg/domain"
)

// GraphOverlay contains run data to highlight on the graph, usually a Trace.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid stateDiagram-v2 for the automaton.
// The start state gets an entry arrow from [*] and final states an exit arrow to [*].
// Parallel transitions are merged into one arrow labelled with every symbol.
func GenerateMermaid(a *domain.Automaton, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	sb.WriteString("    direction LR\n")

	ids := mermaidIDs(a.States())
	for _, st := range a.States() {
		if id := ids[st.Name()]; id != st.Name() {
			fmt.Fprintf(&sb, "    state \"%s\" as %s\n", escapeLabel(st.Name()), id)
		}
	}

	fmt.Fprintf(&sb, "    [*] --> %s\n", ids[a.Start().Name()])
	for _, e := range edges(a) {
		fmt.Fprintf(&sb, "    %s --> %s: %s\n", ids[e.From], ids[e.To], escapeLabel(e.Label()))
	}
	for _, st := range a.Finals() {
		fmt.Fprintf(&sb, "    %s --> [*]\n", ids[st.Name()])
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000\n")

		visitedSet := make(map[string]bool)
		for _, name := range overlay.VisitedNodes {
			safeID, ok := ids[name]
			if !ok || visitedSet[safeID] || name == overlay.CurrentNode {
				continue
			}
			visitedSet[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited\n", safeID)
		}

		if id, ok := ids[overlay.CurrentNode]; ok {
			fmt.Fprintf(&sb, "    class %s current\n", id)
		}
	}

	return sb.String()
}

// mermaidIDs assigns every state a distinct Mermaid identifier. Names that are
// already valid identifiers keep themselves; the others are sanitized and suffixed
// with _2, _3... until they collide with nothing.
func mermaidIDs(states []*domain.State) map[string]string {
	ids := make(map[string]string, len(states))
	taken := make(map[string]bool, len(states))
	for _, st := range states {
		if sanitizeMermaidID(st.Name()) == st.Name() && st.Name() != "" {
			ids[st.Name()] = st.Name()
			taken[st.Name()] = true
		}
	}
	for _, st := range states {
		if _, ok := ids[st.Name()]; ok {
			continue
		}
		base := sanitizeMermaidID(st.Name())
		if base == "" {
			base = "state"
		}
		id := base
		for n := 2; taken[id]; n++ {
			id = fmt.Sprintf("%s_%d", base, n)
		}
		ids[st.Name()] = id
		taken[id] = true
	}
	return ids
}

func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// escapeLabel keeps labels from closing the surrounding quotes.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
