package schema_test

import (
	"testing"

	"github.com/weft/weft/resource/schema"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"ExampleField", "example_field"},
		{"exampleField", "example_field"},
		{"example_field", "example_field"},
		{"VPCConfig", "vpc_config"},
		{"TTL", "ttl"},
		{"Handler", "handler"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := schema.CanonicalName(tt.input)
			if got != tt.want {
				t.Errorf("CanonicalName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
