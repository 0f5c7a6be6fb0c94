// Package graph resolves dependencies between templates.
//
// The manager maintains a directed multigraph whose nodes are template ids
// and whose edges are declared dependencies on single outputs. The graph is
// kept acyclic at all times; cycle checks happen before an edge is inserted
// so that no error leaves the graph partially mutated.
package graph

import (
	"sort"
	"sync"

	"github.com/agext/levenshtein"
	"github.com/weft/weft/template"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

type node struct {
	graph.Node
	template string
}

type line struct {
	graph.Line
	consumer string
	producer string
	output   string
	state    EdgeState
}

func (l *line) edge() Edge {
	return Edge{
		Consumer: l.consumer,
		Producer: l.producer,
		Output:   l.output,
		State:    l.state,
	}
}

// A Manager maintains the dependency graph across all templates in a run.
//
// The Manager should be created with New(). All methods are safe for
// concurrent use; mutations are serialized and reads never observe a
// partially inserted edge.
type Manager struct {
	mu      sync.RWMutex
	graph   *multi.DirectedGraph
	nodes   map[string]*node
	order   []string // template ids in insertion order
	lines   []*line  // edges in insertion order
	outputs *template.Outputs
}

// New creates a new manager resolving dependencies against the given output
// store.
func New(outputs *template.Outputs) *Manager {
	return &Manager{
		graph:   multi.NewDirectedGraph(),
		nodes:   make(map[string]*node),
		outputs: outputs,
	}
}

// Outputs returns the output store the manager resolves against.
func (m *Manager) Outputs() *template.Outputs { return m.outputs }

// DependOn declares that the consumer template depends on one output of the
// producer template.
//
// Returns a SelfDependencyError if consumer and producer are the same
// template, and a CyclicDependencyError naming the full cycle if the edge
// would make the graph cyclic. Both are checked before anything is inserted;
// on error the graph is unchanged.
//
// If the producer is already frozen the edge resolves immediately: the
// returned edge is Resolved, or an UnresolvedOutputError is returned if the
// output does not exist. If the producer is not frozen the edge is recorded
// as Pending and transitions when Freeze is called for the producer.
func (m *Manager) DependOn(consumer, producer, output string) (Edge, error) {
	if consumer == producer {
		return Edge{}, SelfDependencyError{Template: consumer}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if path := m.path(producer, consumer); path != nil {
		return Edge{}, CyclicDependencyError{Path: append(path, producer)}
	}

	state := Pending
	if m.outputs.Frozen(producer) {
		if _, err := m.outputs.Lookup(producer, output); err != nil {
			return Edge{}, UnresolvedOutputError{
				Producer:   producer,
				Output:     output,
				Suggestion: suggestOutput(output, m.outputs.Names(producer)),
			}
		}
		state = Resolved
	}

	from := m.node(consumer)
	to := m.node(producer)
	l := &line{
		Line:     m.graph.NewLine(from, to),
		consumer: consumer,
		producer: producer,
		output:   output,
		state:    state,
	}
	m.graph.SetLine(l)
	m.lines = append(m.lines, l)

	return l.edge(), nil
}

// Freeze marks the producer template's outputs read-only and resolves every
// pending edge against it.
//
// Pending edges whose output exists become Resolved. Edges whose output does
// not exist become Failed; one UnresolvedOutputError per missing output is
// returned, naming every consumer that required it. A nil error means all
// pending edges resolved.
func (m *Manager) Freeze(templateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outputs.Freeze(templateID)

	missing := make(map[string][]string) // output -> consumers
	for _, l := range m.lines {
		if l.producer != templateID || l.state != Pending {
			continue
		}
		if _, err := m.outputs.Lookup(templateID, l.output); err != nil {
			l.state = Failed
			missing[l.output] = append(missing[l.output], l.consumer)
			continue
		}
		l.state = Resolved
	}

	if len(missing) == 0 {
		return nil
	}

	outputs := make([]string, 0, len(missing))
	for o := range missing {
		outputs = append(outputs, o)
	}
	sort.Strings(outputs)

	var err error
	for _, o := range outputs {
		consumers := missing[o]
		sort.Strings(consumers)
		err = multierr.Append(err, UnresolvedOutputError{
			Producer:   templateID,
			Output:     o,
			Consumers:  consumers,
			Suggestion: suggestOutput(o, m.outputs.Names(templateID)),
		})
	}
	return err
}

// BlastRadius returns the set of templates that directly or transitively
// depend on the given template. The template itself is not included.
func (m *Manager) BlastRadius(templateID string) map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	radius := make(map[string]struct{})
	start, ok := m.nodes[templateID]
	if !ok {
		return radius
	}

	queue := []*node{start}
	visited := map[string]struct{}{templateID: {}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		it := m.graph.To(n.ID())
		for it.Next() {
			dep := it.Node().(*node)
			if _, ok := visited[dep.template]; ok {
				continue
			}
			visited[dep.template] = struct{}{}
			radius[dep.template] = struct{}{}
			queue = append(queue, dep)
		}
	}
	return radius
}

// TopologicalOrder returns an evaluation order for the given templates such
// that every producer precedes every consumer that depends on it.
//
// Ties between independent templates are broken by input order, making the
// result deterministic. Templates unknown to the graph are independent.
// Duplicate ids are ignored after their first occurrence.
//
// Returns a CyclicDependencyError if the subgraph induced by the given
// templates contains a cycle. DependOn prevents cycles from entering the
// graph, so this is a defensive re-check for templates supplied from an
// outside source, such as a deserialized snapshot.
func (m *Manager) TopologicalOrder(templates []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	input := make([]string, 0, len(templates))
	included := make(map[string]struct{}, len(templates))
	for _, id := range templates {
		if _, ok := included[id]; ok {
			continue
		}
		included[id] = struct{}{}
		input = append(input, id)
	}

	// Count, per consumer, the edges from producers within the subset.
	indegree := make(map[string]int, len(input))
	for _, l := range m.lines {
		if _, ok := included[l.consumer]; !ok {
			continue
		}
		if _, ok := included[l.producer]; !ok {
			continue
		}
		indegree[l.consumer]++
	}

	out := make([]string, 0, len(input))
	done := make(map[string]struct{}, len(input))
	for len(out) < len(input) {
		progressed := false
		for _, id := range input {
			if _, ok := done[id]; ok {
				continue
			}
			if indegree[id] > 0 {
				continue
			}
			done[id] = struct{}{}
			out = append(out, id)
			progressed = true
			for _, l := range m.lines {
				if l.producer != id {
					continue
				}
				if _, ok := included[l.consumer]; !ok {
					continue
				}
				indegree[l.consumer]--
			}
			break
		}
		if !progressed {
			return nil, CyclicDependencyError{Path: m.findCycle(input, done)}
		}
	}
	return out, nil
}

// Templates returns the ids of all templates in the graph. The results are
// lexicographically sorted.
func (m *Manager) Templates() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	sort.Strings(ids)
	return ids
}

// Edges returns a snapshot of all edges, in the order they were added.
func (m *Manager) Edges() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.lines))
	for i, l := range m.lines {
		out[i] = l.edge()
	}
	return out
}

// Dependencies returns the edges from the given consumer template to its
// producers, in the order they were added.
func (m *Manager) Dependencies(consumer string) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for _, l := range m.lines {
		if l.consumer == consumer {
			out = append(out, l.edge())
		}
	}
	return out
}

// Dependents returns the edges pointing at the given producer template, in
// the order they were added.
func (m *Manager) Dependents(producer string) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for _, l := range m.lines {
		if l.producer == producer {
			out = append(out, l.edge())
		}
	}
	return out
}

// Unresolved returns all edges that are still pending. At the end of a run
// every edge must have resolved; a non-empty result at that point is fatal.
func (m *Manager) Unresolved() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for _, l := range m.lines {
		if l.state == Pending {
			out = append(out, l.edge())
		}
	}
	return out
}

// node returns the node for a template, creating it if needed. The caller
// must hold the write lock.
func (m *Manager) node(templateID string) *node {
	if n, ok := m.nodes[templateID]; ok {
		return n
	}
	n := &node{
		Node:     m.graph.NewNode(),
		template: templateID,
	}
	m.graph.AddNode(n)
	m.nodes[templateID] = n
	m.order = append(m.order, templateID)
	return n
}

// path returns the dependency path from one template to another, both ends
// included, following depends-on edges breadth first. Returns nil if no path
// exists or either template is not in the graph. The caller must hold at
// least a read lock.
func (m *Manager) path(from, to string) []string {
	start, ok := m.nodes[from]
	if !ok {
		return nil
	}
	if _, ok := m.nodes[to]; !ok {
		return nil
	}

	prev := map[string]string{}
	queue := []*node{start}
	visited := map[string]struct{}{from: {}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.template == to {
			path := []string{to}
			for cur := to; cur != from; {
				cur = prev[cur]
				path = append([]string{cur}, path...)
			}
			return path
		}
		it := m.graph.From(n.ID())
		for it.Next() {
			next := it.Node().(*node)
			if _, ok := visited[next.template]; ok {
				continue
			}
			visited[next.template] = struct{}{}
			prev[next.template] = n.template
			queue = append(queue, next)
		}
	}
	return nil
}

// findCycle locates a cycle among the templates that could not be ordered.
// The caller must hold at least a read lock.
func (m *Manager) findCycle(input []string, done map[string]struct{}) []string {
	// Depends-on adjacency within the remaining set.
	deps := make(map[string][]string)
	remaining := make(map[string]struct{})
	for _, id := range input {
		if _, ok := done[id]; !ok {
			remaining[id] = struct{}{}
		}
	}
	for _, l := range m.lines {
		if _, ok := remaining[l.consumer]; !ok {
			continue
		}
		if _, ok := remaining[l.producer]; !ok {
			continue
		}
		deps[l.consumer] = append(deps[l.consumer], l.producer)
	}

	// Every remaining template has positive indegree, so a walk that only
	// follows remaining templates must close a cycle.
	for _, start := range input {
		if _, ok := remaining[start]; !ok {
			continue
		}
		var walk func(cur string, stack []string, on map[string]int) []string
		walk = func(cur string, stack []string, on map[string]int) []string {
			if i, ok := on[cur]; ok {
				return append(stack[i:], cur)
			}
			on[cur] = len(stack)
			stack = append(stack, cur)
			for _, next := range deps[cur] {
				if cycle := walk(next, stack, on); cycle != nil {
					return cycle
				}
			}
			delete(on, cur)
			return nil
		}
		if cycle := walk(start, nil, map[string]int{}); cycle != nil {
			return cycle
		}
	}
	return nil
}

// suggestOutput returns the declared output name that most closely matches
// the requested name. Returns an empty string if no match was found.
func suggestOutput(want string, names []string) string {
	maxdist := 5
	best := ""
	bestdist := maxdist + 1
	for _, name := range names {
		dist := levenshtein.Distance(want, name, nil)
		if dist < bestdist {
			best = name
			bestdist = dist
		}
	}
	return best
}
