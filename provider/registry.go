package provider

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/agext/levenshtein"
)

// ConflictError is returned when a namespace is already registered with a
// different provider module.
type ConflictError struct {
	Namespace string
	Existing  Provider
	New       Provider
}

// Conflict is a no-op method that allows the error to be asserted as an
// interface, rather than importing the provider package.
func (e ConflictError) Conflict() {}

// Error implements error.
func (e ConflictError) Error() string {
	return fmt.Sprintf(
		"namespace %q already registered with %T, cannot register %T",
		e.Namespace, e.Existing, e.New,
	)
}

// NotRegisteredError is returned when looking up a namespace that has not
// been registered.
type NotRegisteredError struct {
	Namespace string

	// Suggestion contains the name of a registered namespace that closely
	// matches the requested one. Empty if no close match was found.
	Suggestion string
}

// NotRegistered is a no-op method that allows the error to be asserted as an
// interface, rather than importing the provider package.
func (e NotRegisteredError) NotRegistered() {}

// Error implements error.
func (e NotRegisteredError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("namespace %q not registered, did you mean %q?", e.Namespace, e.Suggestion)
	}
	return fmt.Sprintf("namespace %q not registered", e.Namespace)
}

// A Registry maintains the provider modules that are loaded, keyed by
// namespace.
//
// A Registry should be constructed at the start of a run with NewRegistry()
// and passed to all code that needs it. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider module to the registry.
//
// Registration is idempotent: registering the same module under a namespace
// it already holds is a no-op. Modules are considered the same when they are
// the same concrete type. Registering a different module under a taken
// namespace returns a ConflictError.
func (r *Registry) Register(p Provider) error {
	ns := p.Namespace()
	if ns == "" {
		return fmt.Errorf("provider %T has no namespace", p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ex, ok := r.providers[ns]
	if ok {
		if reflect.TypeOf(ex) == reflect.TypeOf(p) {
			return nil
		}
		return ConflictError{Namespace: ns, Existing: ex, New: p}
	}
	r.providers[ns] = p
	return nil
}

// Lookup returns the provider registered under the given namespace. Returns
// a NotRegisteredError if no provider holds the namespace, with a suggestion
// for a close match if one exists.
func (r *Registry) Lookup(namespace string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[namespace]
	if !ok {
		return nil, NotRegisteredError{
			Namespace:  namespace,
			Suggestion: r.suggest(namespace),
		}
	}
	return p, nil
}

// Namespaces returns the namespaces that have been registered. The results
// are lexicographically sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nn := make([]string, 0, len(r.providers))
	for ns := range r.providers {
		nn = append(nn, ns)
	}
	sort.Strings(nn)
	return nn
}

// Reset removes all registered providers. It is intended for test harnesses
// that reuse a registry between test cases.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.providers = make(map[string]Provider)
	r.mu.Unlock()
}

// suggest returns the registered namespace that most closely matches the
// requested name. Returns an empty string if no match was found.
//
// The caller must hold at least a read lock.
func (r *Registry) suggest(want string) string {
	maxdist := 5

	type suggestion struct {
		str  string
		dist int
	}

	var list []suggestion
	for name := range r.providers {
		dist := levenshtein.Distance(want, name, nil)
		if dist <= maxdist {
			list = append(list, suggestion{str: name, dist: dist})
		}
	}

	if len(list) == 0 {
		return ""
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].dist < list[j].dist
	})

	return list[0].str
}
