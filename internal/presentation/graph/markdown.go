package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dfa/pkg/domain"
)

// GenerateMarkdown renders the automaton as a Markdown document: a short summary
// followed by the transition table, one row per state and one column per symbol.
// Start states are prefixed with "→" and final states with "*".
func GenerateMarkdown(name string, a *domain.Automaton) string {
	var sb strings.Builder
	if name == "" {
		name = "Automaton"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)

	finals := make([]string, 0, len(a.Finals()))
	for _, st := range a.Finals() {
		finals = append(finals, "`"+st.Name()+"`")
	}
	fmt.Fprintf(&sb, "- **States:** %d\n", len(a.States()))
	fmt.Fprintf(&sb, "- **Alphabet:** %d symbols\n", len(a.Alphabet()))
	fmt.Fprintf(&sb, "- **Start:** `%s`\n", a.Start().Name())
	fmt.Fprintf(&sb, "- **Final:** %s\n\n", strings.Join(finals, ", "))

	sb.WriteString("| State |")
	for _, sym := range a.Alphabet() {
		fmt.Fprintf(&sb, " %s |", escapeCell(string(sym)))
	}
	sb.WriteString("\n|---|")
	for range a.Alphabet() {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, st := range a.States() {
		marker := ""
		if st.IsStart() {
			marker += "→"
		}
		if st.IsFinal() {
			marker += "*"
		}
		fmt.Fprintf(&sb, "| %s%s |", marker, escapeCell(st.Name()))
		for _, sym := range a.Alphabet() {
			to, err := st.Read(sym)
			if err != nil {
				to = "-"
			}
			fmt.Fprintf(&sb, " %s |", escapeCell(to))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
