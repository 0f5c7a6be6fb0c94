package resource_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/weft/weft/resource"
	"github.com/zclconf/go-cty/cty"
)

func TestNew(t *testing.T) {
	attrs := cty.ObjectVal(map[string]cty.Value{
		"cidr_block": cty.StringVal("10.0.0.0/16"),
	})
	ref := resource.New("net", "aws_vpc", "main", attrs, []string{"id", "arn"})

	if ref.Template() != "net" {
		t.Errorf("Template() = %q, want %q", ref.Template(), "net")
	}
	if ref.Type() != "aws_vpc" {
		t.Errorf("Type() = %q, want %q", ref.Type(), "aws_vpc")
	}
	if ref.Name() != "main" {
		t.Errorf("Name() = %q, want %q", ref.Name(), "main")
	}
	if !ref.Attrs().RawEquals(attrs) {
		t.Errorf("Attrs() = %#v, want %#v", ref.Attrs(), attrs)
	}
	if ref.String() != "aws_vpc.main" {
		t.Errorf("String() = %q, want %q", ref.String(), "aws_vpc.main")
	}

	got := ref.Outputs()
	want := []string{"arn", "id"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Outputs() (-got +want)\n%s", diff)
	}
}

func TestNew_panics(t *testing.T) {
	tests := []struct {
		name          string
		typename, res string
	}{
		{"no type", "", "main"},
		{"no name", "aws_vpc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("New() did not panic")
				}
			}()
			resource.New("net", tt.typename, tt.res, cty.NilVal, nil)
		})
	}
}

func TestReference_Output(t *testing.T) {
	ref := resource.New("net", "aws_vpc", "main", cty.NilVal, []string{"id"})

	out, ok := ref.Output("id")
	if !ok {
		t.Fatal("Output(id) not found")
	}
	if out.Name() != "id" {
		t.Errorf("Name() = %q, want %q", out.Name(), "id")
	}
	if got, want := out.Token(), "${aws_vpc.main.id}"; got != want {
		t.Errorf("Token() = %q, want %q", got, want)
	}
	wantPath := cty.GetAttrPath("aws_vpc").GetAttr("main").GetAttr("id")
	if !out.Path().Equals(wantPath) {
		t.Errorf("Path() = %#v, want %#v", out.Path(), wantPath)
	}

	if _, ok := ref.Output("nope"); ok {
		t.Error("Output(nope) found, want not found")
	}
}

func TestOutputFromPath(t *testing.T) {
	path := cty.GetAttrPath("aws_vpc").GetAttr("main").GetAttr("id")
	out, err := resource.OutputFromPath(path)
	if err != nil {
		t.Fatalf("OutputFromPath() error = %v", err)
	}
	if got, want := out.Token(), "${aws_vpc.main.id}"; got != want {
		t.Errorf("Token() = %q, want %q", got, want)
	}
}

func TestParseToken(t *testing.T) {
	out, err := resource.ParseToken("${aws_vpc.main.id}")
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if out.Name() != "id" {
		t.Errorf("Name() = %q, want %q", out.Name(), "id")
	}

	tests := []string{
		"plain string",
		"${aws_vpc.main}",      // too short
		"${aws_vpc.main.id.x}", // too long
		"${}",
		"${aws_vpc[0].main.id}", // index step
	}
	for _, token := range tests {
		if _, err := resource.ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) error = nil, want error", token)
		}
	}
}

func TestIsToken(t *testing.T) {
	if !resource.IsToken("${aws_vpc.main.id}") {
		t.Error("IsToken() = false for valid token")
	}
	if resource.IsToken("10.0.0.0/16") {
		t.Error("IsToken() = true for plain string")
	}
}

func TestOutputFromPath_invalid(t *testing.T) {
	tests := []struct {
		name string
		path cty.Path
	}{
		{"too short", cty.GetAttrPath("aws_vpc").GetAttr("main")},
		{"index step", cty.GetAttrPath("aws_vpc").Index(cty.NumberIntVal(0)).GetAttr("id")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := resource.OutputFromPath(tt.path); err == nil {
				t.Error("OutputFromPath() error = nil, want error")
			}
		})
	}
}
