package schema

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// A Field declares a single attribute in a resource schema.
type Field struct {
	// Type is the required type for the attribute value. Values that are
	// convertible to the type are converted during validation.
	Type cty.Type

	// Required fields must be set in the input. A field cannot be both
	// required and have a default.
	Required bool

	// Default is applied when an optional field is not set. cty.NilVal
	// means no default; the field is then null in the normalized output.
	Default cty.Value

	// Rules contains constraint rules to apply to the value, in a comma
	// separated list:
	//   min=3,max=10
	// An empty string applies no constraints. See validate.go for the
	// supported rules.
	Rules string
}

// A Schema declares the attributes and outputs for a resource type.
//
// Schemas are static descriptors; a single generic Validate function
// consumes them. They carry no behavior of their own.
type Schema struct {
	Fields  map[string]Field
	Outputs []string
}

// FieldNames returns the declared attribute names, lexicographically sorted.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for n := range s.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
