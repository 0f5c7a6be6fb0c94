package template_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/weft/weft/template"
	"github.com/zclconf/go-cty/cty"
)

func TestOutputs_Declare(t *testing.T) {
	outputs := template.NewOutputs()

	ref, err := outputs.Declare("net", "aws_vpc", "main", cty.NilVal, []string{"vpc_id", "vpc_arn"})
	if err != nil {
		t.Fatalf("Declare() error = %v", err)
	}
	if ref.Template() != "net" {
		t.Errorf("Template() = %q, want %q", ref.Template(), "net")
	}

	got, err := outputs.Lookup("net", "vpc_id")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != ref {
		t.Errorf("Lookup() = %v, want the declared reference", got)
	}

	names := outputs.Names("net")
	want := []string{"vpc_arn", "vpc_id"}
	if diff := cmp.Diff(names, want); diff != "" {
		t.Errorf("Names() (-got +want)\n%s", diff)
	}
}

func TestOutputs_Declare_duplicate(t *testing.T) {
	outputs := template.NewOutputs()

	if _, err := outputs.Declare("net", "aws_vpc", "main", cty.NilVal, []string{"id"}); err != nil {
		t.Fatal(err)
	}
	_, err := outputs.Declare("net", "aws_subnet", "a", cty.NilVal, []string{"cidr", "id"})
	dup, ok := err.(template.DuplicateOutputError)
	if !ok {
		t.Fatalf("Declare() error = %v, want DuplicateOutputError", err)
	}
	if dup.Output != "id" {
		t.Errorf("Output = %q, want %q", dup.Output, "id")
	}

	// The failed declaration must not be partially recorded.
	if _, err := outputs.Lookup("net", "cidr"); err == nil {
		t.Error("Lookup(net, cidr) error = nil, want NotFoundError")
	}
}

func TestOutputs_Freeze(t *testing.T) {
	outputs := template.NewOutputs()

	if _, err := outputs.Declare("net", "aws_vpc", "main", cty.NilVal, []string{"id"}); err != nil {
		t.Fatal(err)
	}
	if outputs.Frozen("net") {
		t.Error("Frozen() = true before freeze")
	}

	outputs.Freeze("net")
	if !outputs.Frozen("net") {
		t.Error("Frozen() = false after freeze")
	}

	_, err := outputs.Declare("net", "aws_subnet", "a", cty.NilVal, []string{"subnet_id"})
	if _, ok := err.(template.AlreadyFrozenError); !ok {
		t.Fatalf("Declare() error = %v, want AlreadyFrozenError", err)
	}

	// Frozen registries can still be read.
	if _, err := outputs.Lookup("net", "id"); err != nil {
		t.Errorf("Lookup() after freeze error = %v", err)
	}
}

func TestOutputs_Freeze_unknownTemplate(t *testing.T) {
	outputs := template.NewOutputs()

	// Freezing a template that declared nothing freezes an empty registry.
	outputs.Freeze("empty")
	if !outputs.Frozen("empty") {
		t.Error("Frozen() = false after freezing unknown template")
	}
	if names := outputs.Names("empty"); len(names) != 0 {
		t.Errorf("Names() = %v, want none", names)
	}
}

func TestOutputs_Lookup_notFound(t *testing.T) {
	outputs := template.NewOutputs()
	if _, err := outputs.Declare("net", "aws_vpc", "main", cty.NilVal, []string{"id"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name             string
		template, output string
	}{
		{"unknown template", "nope", "id"},
		{"unknown output", "net", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := outputs.Lookup(tt.template, tt.output)
			if _, ok := err.(template.NotFoundError); !ok {
				t.Errorf("Lookup() error = %v, want NotFoundError", err)
			}
		})
	}
}

func TestOutputs_References(t *testing.T) {
	outputs := template.NewOutputs()

	if _, err := outputs.Declare("net", "aws_vpc", "main", cty.NilVal, []string{"vpc_id", "vpc_arn"}); err != nil {
		t.Fatal(err)
	}
	if _, err := outputs.Declare("net", "aws_subnet", "a", cty.NilVal, []string{"subnet_id"}); err != nil {
		t.Fatal(err)
	}

	refs := outputs.References("net")
	if len(refs) != 2 {
		t.Fatalf("References() returned %d refs, want 2", len(refs))
	}
	// Sorted by type, name; a reference with multiple outputs appears once.
	if refs[0].Type() != "aws_subnet" || refs[1].Type() != "aws_vpc" {
		t.Errorf("References() order = %s, %s", refs[0], refs[1])
	}
}

func TestOutputs_Templates(t *testing.T) {
	outputs := template.NewOutputs()
	if _, err := outputs.Declare("net", "aws_vpc", "main", cty.NilVal, []string{"id"}); err != nil {
		t.Fatal(err)
	}
	outputs.Freeze("dns")

	got := outputs.Templates()
	want := []string{"dns", "net"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Templates() (-got +want)\n%s", diff)
	}
}
