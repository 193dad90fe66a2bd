package graph

import (
	"fmt"
	"strings"
)

// CircularDependencyError represents a dependency cycle between bindings.
type CircularDependencyError struct {
	Node NodeKey
	Path []NodeKey
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	if len(e.Path) == 0 {
		b.WriteString(fmt.Sprintf("    %s\n", e.Node))
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", e.Node))
	} else {
		for i, node := range e.Path {
			b.WriteString(fmt.Sprintf("    %s\n", node))
			if i < len(e.Path)-1 {
				b.WriteString("      ↓\n")
			}
		}
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", e.Path[0]))
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Inject a provider or lazy handle for one of the dependencies\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}
