package schema_test

import (
	"strings"
	"testing"

	"github.com/weft/weft/resource/schema"
	"github.com/zclconf/go-cty/cty"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		Fields: map[string]schema.Field{
			"cidr_block": {
				Type:     cty.String,
				Required: true,
				Rules:    "cidrv4",
			},
			"instance_type": {
				Type:    cty.String,
				Default: cty.StringVal("t3.micro"),
				Rules:   "oneof=t3.micro t3.small",
			},
			"count": {
				Type:    cty.Number,
				Default: cty.NumberIntVal(1),
				Rules:   "gte=1,lte=10",
			},
			"tags": {
				Type: cty.Map(cty.String),
			},
		},
		Outputs: []string{"id"},
	}
}

func TestValidate(t *testing.T) {
	got, err := schema.Validate("aws_vpc", testSchema(), map[string]cty.Value{
		"cidr_block": cty.StringVal("10.0.0.0/16"),
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := cty.ObjectVal(map[string]cty.Value{
		"cidr_block":    cty.StringVal("10.0.0.0/16"),
		"instance_type": cty.StringVal("t3.micro"), // default applied
		"count":         cty.NumberIntVal(1),       // default applied
		"tags":          cty.NullVal(cty.Map(cty.String)),
	})
	if !got.RawEquals(want) {
		t.Errorf("Validate() = %#v, want %#v", got, want)
	}
}

func TestValidate_normalizesNames(t *testing.T) {
	got, err := schema.Validate("aws_vpc", testSchema(), map[string]cty.Value{
		"CidrBlock":    cty.StringVal("10.0.0.0/16"),
		"InstanceType": cty.StringVal("t3.small"),
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.GetAttr("instance_type").AsString() != "t3.small" {
		t.Errorf("instance_type = %v, want t3.small", got.GetAttr("instance_type"))
	}
}

func TestValidate_convertsTypes(t *testing.T) {
	// A numeric string converts to the declared number type.
	got, err := schema.Validate("aws_vpc", testSchema(), map[string]cty.Value{
		"cidr_block": cty.StringVal("10.0.0.0/16"),
		"count":      cty.StringVal("3"),
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !got.GetAttr("count").RawEquals(cty.NumberIntVal(3)) {
		t.Errorf("count = %#v, want 3", got.GetAttr("count"))
	}
}

func TestValidate_failures(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]cty.Value
		field   string
		message string
	}{
		{
			name:    "required missing",
			raw:     map[string]cty.Value{},
			field:   "cidr_block",
			message: "required",
		},
		{
			name: "type mismatch",
			raw: map[string]cty.Value{
				"cidr_block": cty.StringVal("10.0.0.0/16"),
				"count":      cty.StringVal("abc"),
			},
			field:   "count",
			message: "must be number",
		},
		{
			name: "enum violation",
			raw: map[string]cty.Value{
				"cidr_block":    cty.StringVal("10.0.0.0/16"),
				"instance_type": cty.StringVal("m5.large"),
			},
			field:   "instance_type",
			message: "must be one of: [t3.micro t3.small]",
		},
		{
			name: "constraint violation",
			raw: map[string]cty.Value{
				"cidr_block": cty.StringVal("10.0.0.0/16"),
				"count":      cty.NumberIntVal(0),
			},
			field:   "count",
			message: "must be 1 or more",
		},
		{
			name: "unknown attribute",
			raw: map[string]cty.Value{
				"cidr_block": cty.StringVal("10.0.0.0/16"),
				"nope":       cty.StringVal("x"),
			},
			field:   "nope",
			message: "not a declared attribute",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Validate("aws_vpc", testSchema(), tt.raw)
			verr, ok := err.(*schema.ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if verr.Type != "aws_vpc" {
				t.Errorf("Type = %q, want %q", verr.Type, "aws_vpc")
			}
			msg, ok := verr.Fields[tt.field]
			if !ok {
				t.Fatalf("Fields = %v, want entry for %q", verr.Fields, tt.field)
			}
			if !strings.Contains(msg, tt.message) {
				t.Errorf("message = %q, want to contain %q", msg, tt.message)
			}
		})
	}
}

func TestValidate_collectsAllViolations(t *testing.T) {
	_, err := schema.Validate("aws_vpc", testSchema(), map[string]cty.Value{
		"instance_type": cty.StringVal("m5.large"),
	})
	verr, ok := err.(*schema.ValidationError)
	if !ok {
		t.Fatalf("Validate() error = %v, want ValidationError", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("Fields = %v, want 2 entries", verr.Fields)
	}
}

func TestValidationError_message(t *testing.T) {
	err := &schema.ValidationError{
		Type: "aws_vpc",
		Fields: map[string]string{
			"cidr_block": "required",
			"count":      "must be 1 or more",
		},
	}
	want := "invalid attributes for aws_vpc: cidr_block: required; count: must be 1 or more"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidate_arnRule(t *testing.T) {
	s := &schema.Schema{
		Fields: map[string]schema.Field{
			"role": {Type: cty.String, Required: true, Rules: "arn"},
		},
	}

	if _, err := schema.Validate("aws_iam_role", s, map[string]cty.Value{
		"role": cty.StringVal("arn:aws:iam::123456789012:role/test"),
	}); err != nil {
		t.Errorf("Validate() error = %v for valid arn", err)
	}

	_, err := schema.Validate("aws_iam_role", s, map[string]cty.Value{
		"role": cty.StringVal("not-an-arn"),
	})
	verr, ok := err.(*schema.ValidationError)
	if !ok {
		t.Fatalf("Validate() error = %v, want ValidationError", err)
	}
	if !strings.Contains(verr.Fields["role"], "must be a valid arn") {
		t.Errorf("message = %q, want arn message", verr.Fields["role"])
	}
}

func TestValidate_noSideEffects(t *testing.T) {
	s := testSchema()
	raw := map[string]cty.Value{
		"cidr_block": cty.StringVal("not-a-cidr"),
	}
	if _, err := schema.Validate("aws_vpc", s, raw); err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	// The input map is untouched.
	if len(raw) != 1 {
		t.Errorf("raw attributes were modified: %v", raw)
	}
}
