// Package template tracks the outputs declared by templates.
//
// A template is an independently deployable unit of resource declarations.
// While a template evaluates, each resource constructor declares its outputs
// here. Once evaluation finishes the template is frozen and its outputs
// become read-only, at which point other templates may resolve dependencies
// against them.
package template

import (
	"fmt"
	"sort"
	"sync"

	"github.com/weft/weft/resource"
	"github.com/zclconf/go-cty/cty"
)

// AlreadyFrozenError is returned when declaring outputs on a template that
// has finished evaluating.
type AlreadyFrozenError struct {
	Template string
}

// AlreadyFrozen is a no-op method that allows the error to be asserted as an
// interface, rather than importing the template package.
func (e AlreadyFrozenError) AlreadyFrozen() {}

// Error implements error.
func (e AlreadyFrozenError) Error() string {
	return fmt.Sprintf("template %q is frozen", e.Template)
}

// DuplicateOutputError is returned when declaring an output name that is
// already taken within the template.
type DuplicateOutputError struct {
	Template string
	Output   string
}

// Error implements error.
func (e DuplicateOutputError) Error() string {
	return fmt.Sprintf("output %q already declared in template %q", e.Output, e.Template)
}

// NotFoundError is returned when looking up an output that has not been
// declared. This is not necessarily fatal; the caller decides how to treat
// it.
type NotFoundError struct {
	Template string
	Output   string
}

// NotFound is a no-op method that allows the error to be asserted as an
// interface, rather than importing the template package.
func (e NotFoundError) NotFound() {}

// Error implements error.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("output %q not declared in template %q", e.Output, e.Template)
}

type entry struct {
	refs   map[string]*resource.Reference
	frozen bool
}

// Outputs stores the declared outputs for all templates in a run, keyed by
// template id.
//
// Outputs should be created with NewOutputs(). It is safe for concurrent
// use.
type Outputs struct {
	mu        sync.RWMutex
	templates map[string]*entry
}

// NewOutputs creates a new empty output store.
func NewOutputs() *Outputs {
	return &Outputs{
		templates: make(map[string]*entry),
	}
}

// Declare records a resource and its outputs in the template's registry and
// returns the reference for the resource.
//
// Every name in outputs becomes resolvable against the template once the
// template is frozen. Declaring is atomic: if any output name is already
// taken, a DuplicateOutputError is returned and nothing is recorded.
//
// Returns an AlreadyFrozenError if the template has finished evaluating.
func (o *Outputs) Declare(templateID, typename, name string, attrs cty.Value, outputs []string) (*resource.Reference, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.templates[templateID]
	if !ok {
		e = &entry{refs: make(map[string]*resource.Reference)}
		o.templates[templateID] = e
	}
	if e.frozen {
		return nil, AlreadyFrozenError{Template: templateID}
	}
	for _, out := range outputs {
		if _, taken := e.refs[out]; taken {
			return nil, DuplicateOutputError{Template: templateID, Output: out}
		}
	}
	ref := resource.New(templateID, typename, name, attrs, outputs)
	for _, out := range outputs {
		e.refs[out] = ref
	}
	return ref, nil
}

// Freeze marks the template's outputs read-only. Subsequent Declare calls
// for the template fail with AlreadyFrozenError.
//
// Freezing a template that has declared nothing freezes an empty registry.
// Freeze is idempotent.
func (o *Outputs) Freeze(templateID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.templates[templateID]
	if !ok {
		e = &entry{refs: make(map[string]*resource.Reference)}
		o.templates[templateID] = e
	}
	e.frozen = true
}

// Frozen reports whether the template has been frozen.
func (o *Outputs) Frozen(templateID string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	e, ok := o.templates[templateID]
	return ok && e.frozen
}

// Lookup returns the reference that declared the given output in a template.
// Returns a NotFoundError for an unknown template or a not-yet-declared
// output.
func (o *Outputs) Lookup(templateID, output string) (*resource.Reference, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	e, ok := o.templates[templateID]
	if !ok {
		return nil, NotFoundError{Template: templateID, Output: output}
	}
	ref, ok := e.refs[output]
	if !ok {
		return nil, NotFoundError{Template: templateID, Output: output}
	}
	return ref, nil
}

// Names returns the output names declared in a template. The results are
// lexicographically sorted.
func (o *Outputs) Names(templateID string) []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	e, ok := o.templates[templateID]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(e.refs))
	for n := range e.refs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// References returns the distinct resource references declared in a
// template, sorted by type and name.
func (o *Outputs) References(templateID string) []*resource.Reference {
	o.mu.RLock()
	defer o.mu.RUnlock()
	e, ok := o.templates[templateID]
	if !ok {
		return nil
	}
	seen := make(map[*resource.Reference]struct{}, len(e.refs))
	var refs []*resource.Reference
	for _, ref := range e.refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Type() != refs[j].Type() {
			return refs[i].Type() < refs[j].Type()
		}
		return refs[i].Name() < refs[j].Name()
	})
	return refs
}

// Templates returns the ids of all templates that have declared outputs or
// been frozen. The results are lexicographically sorted.
func (o *Outputs) Templates() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ids := make([]string, 0, len(o.templates))
	for id := range o.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
