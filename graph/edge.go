package graph

import "fmt"

// An EdgeState is the resolution state of a dependency edge.
type EdgeState int

const (
	// Pending edges reference a producer that has not yet been frozen.
	Pending EdgeState = iota

	// Resolved edges reference an output that exists in the producer's
	// frozen registry. Resolved is terminal.
	Resolved

	// Failed edges reference an output that did not exist when the
	// producer froze. Failed is terminal.
	Failed
)

// String implements fmt.Stringer.
func (s EdgeState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("EdgeState(%d)", int(s))
	}
}

// An Edge is a dependency of a consumer template on one output of a producer
// template.
//
// Edges returned from the manager are value snapshots; the State field
// reflects the state at the time of the call and does not update when a
// pending edge later resolves.
type Edge struct {
	Consumer string
	Producer string
	Output   string
	State    EdgeState
}

// String implements fmt.Stringer.
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s.%s (%s)", e.Consumer, e.Producer, e.Output, e.State)
}
