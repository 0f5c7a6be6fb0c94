package graph

import (
	"fmt"
	"strings"
)

// SelfDependencyError is returned when a template declares a dependency on
// itself.
type SelfDependencyError struct {
	Template string
}

// Error implements error.
func (e SelfDependencyError) Error() string {
	return fmt.Sprintf("template %q cannot depend on itself", e.Template)
}

// CyclicDependencyError is returned when a dependency would create a cycle,
// or when a cycle is found among templates passed to TopologicalOrder.
//
// Path contains the full cycle; the first and last elements are the same
// template.
type CyclicDependencyError struct {
	Path []string
}

// Error implements error.
func (e CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

// UnresolvedOutputError is returned when a dependency references an output
// that does not exist in the producing template's frozen registry.
type UnresolvedOutputError struct {
	Producer string
	Output   string

	// Consumers contains the templates whose pending dependencies failed
	// when the producer froze. Empty when the error is returned directly
	// from DependOn against an already frozen producer.
	Consumers []string

	// Suggestion contains a declared output name that closely matches the
	// requested one. Empty if no close match was found.
	Suggestion string
}

// Unresolved is a no-op method that allows the error to be asserted as an
// interface, rather than importing the graph package.
func (e UnresolvedOutputError) Unresolved() {}

// Error implements error.
func (e UnresolvedOutputError) Error() string {
	msg := fmt.Sprintf("output %q does not exist in template %q", e.Output, e.Producer)
	if len(e.Consumers) > 0 {
		msg += fmt.Sprintf(" (required by %s)", strings.Join(e.Consumers, ", "))
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(", did you mean %q?", e.Suggestion)
	}
	return msg
}
