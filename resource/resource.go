package resource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/weft/weft/ctyext"
	"github.com/zclconf/go-cty/cty"
)

// A Reference is a handle to a resource declared within a template.
//
// The reference captures the resource identity, a read-only snapshot of the
// normalized input attributes, and the set of outputs the resource exposes.
// Output values are deferred; a Reference never contains computed results.
//
// A Reference is created once by the declaring template and is immutable
// after creation. It may be shared by any number of downstream consumers.
type Reference struct {
	template string
	typename string
	name     string
	attrs    cty.Value
	outputs  map[string]Output
}

// New creates a reference for a resource declared in the given template.
//
// attrs should be the normalized attribute object returned from schema
// validation. cty values are immutable so the snapshot is safe to share.
//
// Panics if the type or name is blank. These must be checked by the calling
// code before declaring a resource, failing to do so indicates a bug in the
// calling code.
func New(template, typename, name string, attrs cty.Value, outputs []string) *Reference {
	if typename == "" {
		panic("Resource has no type")
	}
	if name == "" {
		panic("Resource has no name")
	}
	ref := &Reference{
		template: template,
		typename: typename,
		name:     name,
		attrs:    attrs,
		outputs:  make(map[string]Output, len(outputs)),
	}
	for _, o := range outputs {
		ref.outputs[o] = Output{
			path: cty.GetAttrPath(typename).GetAttr(name).GetAttr(o),
		}
	}
	return ref
}

// Template returns the id of the template the resource was declared in.
func (r *Reference) Template() string { return r.template }

// Type returns the resource type name.
func (r *Reference) Type() string { return r.typename }

// Name returns the resource name, unique within its type.
func (r *Reference) Name() string { return r.name }

// Attrs returns the normalized attribute snapshot for the resource.
func (r *Reference) Attrs() cty.Value { return r.attrs }

// Output returns the deferred output with the given name. Returns false if
// the resource does not expose the output.
func (r *Reference) Output(name string) (Output, bool) {
	o, ok := r.outputs[name]
	return o, ok
}

// Outputs returns the names of all outputs the resource exposes. The results
// are lexicographically sorted.
func (r *Reference) Outputs() []string {
	names := make([]string, 0, len(r.outputs))
	for n := range r.outputs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Reference) String() string {
	return fmt.Sprintf("%s.%s", r.typename, r.name)
}

// An Output is a deferred value exposed by a resource.
//
// The output is symbolic; it carries the path to the value
// (type.name.attribute), not the value itself. Resolution happens in a
// downstream synthesis step, outside this library.
type Output struct {
	path cty.Path
}

// OutputFromPath creates an output from a previously serialized path. The
// path must have the shape type.name.attribute.
func OutputFromPath(path cty.Path) (Output, error) {
	if len(path) != 3 {
		return Output{}, fmt.Errorf("output path must have 3 parts, got %d", len(path))
	}
	for i, p := range path {
		if _, ok := p.(cty.GetAttrStep); !ok {
			return Output{}, fmt.Errorf("output path part %d is not an attribute step", i)
		}
	}
	return Output{path: path}, nil
}

// Path returns the path to the deferred value.
func (o Output) Path() cty.Path { return o.path }

// Name returns the output attribute name, the last part of the path.
func (o Output) Name() string {
	return o.path[len(o.path)-1].(cty.GetAttrStep).Name
}

// Token returns the textual placeholder form of the output,
// ${type.name.attribute}. The token is safe to embed in generated
// configuration; it is an opaque marker until a synthesis step resolves it.
func (o Output) Token() string {
	return "${" + ctyext.PathString(o.path) + "}"
}

// ParseToken parses a textual output token back into an output.
//
// Builders use this to detect attribute values that are references to
// another resource's output. Returns an error if the string is not a token
// or the embedded path does not have the shape type.name.attribute.
func ParseToken(token string) (Output, error) {
	if !strings.HasPrefix(token, "${") || !strings.HasSuffix(token, "}") {
		return Output{}, fmt.Errorf("%q is not an output token", token)
	}
	path, err := ctyext.ParsePathString(token[2 : len(token)-1])
	if err != nil {
		return Output{}, fmt.Errorf("parse token %q: %v", token, err)
	}
	return OutputFromPath(path)
}

// IsToken reports whether the string looks like an output token.
func IsToken(s string) bool {
	_, err := ParseToken(s)
	return err == nil
}
