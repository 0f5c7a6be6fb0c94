package schema

import (
	"regexp"
	"strings"
)

var reFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
var reAllCap = regexp.MustCompile("([a-z0-9])([A-Z])")

// CanonicalName normalizes an attribute name to its canonical snake_case
// form. ExampleField and exampleField both become example_field; names that
// are already snake_case are returned unchanged.
func CanonicalName(name string) string {
	snake := reFirstCap.ReplaceAllString(name, "${1}_${2}")
	snake = reAllCap.ReplaceAllString(snake, "${1}_${2}")
	return strings.ToLower(snake)
}
