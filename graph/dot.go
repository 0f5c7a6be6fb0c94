package graph

import (
	"fmt"
	"strings"
)

// DOT renders the dependency graph as Graphviz DOT text, for blast-radius
// and visualization tooling. Templates appear in the order they entered the
// graph; edges are labelled with the consumed output and resolution state.
func (m *Manager) DOT() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph templates {\n")
	b.WriteString("  rankdir=LR;\n")

	aliases := make(map[string]string, len(m.order))
	for i, id := range m.order {
		alias := fmt.Sprintf("n%d", i)
		aliases[id] = alias
		b.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", alias, escapeDOT(id)))
	}
	for _, l := range m.lines {
		b.WriteString(fmt.Sprintf(
			"  %s -> %s [label=\"%s (%s)\"];\n",
			aliases[l.consumer], aliases[l.producer], escapeDOT(l.output), l.state,
		))
	}
	b.WriteString("}\n")
	return b.String()
}

func escapeDOT(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}
