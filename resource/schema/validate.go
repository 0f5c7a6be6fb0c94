package schema

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"go.uber.org/multierr"
	"gopkg.in/go-playground/validator.v9"
)

var check = validator.New()

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("Register custom validator: %v", err))
	}
}

func init() {
	mustRegister(check.RegisterValidation("div", func(fl validator.FieldLevel) bool {
		param := fl.Param()
		if param == "" {
			panic("div validator must have a param (div=64 for dividable by 64)")
		}
		mod, err := strconv.Atoi(param)
		if err != nil {
			panic(fmt.Sprintf("Parse divider: %v", err))
		}
		return fl.Field().Int()%int64(mod) == 0
	}))
	mustRegister(check.RegisterValidation("arn", func(fl validator.FieldLevel) bool {
		str := fl.Field().String()
		_, err := arn.Parse(str)
		return err == nil
	}))
}

var once sync.Once
var formats map[string]string

func initFormatters() {
	formats = map[string]string{
		"gte":   "must be %v or more",
		"gt":    "must be more than %v",
		"lte":   "must be %v or less",
		"lt":    "must be less than %v",
		"min":   "must be %v or more",
		"max":   "must be %v or less",
		"len":   "must have length %v",
		"oneof": "must be one of: [%v]",

		// custom
		"div": "must be divisible by %v",
		"arn": "must be a valid arn (https://docs.aws.amazon.com/general/latest/gr/aws-arns-and-namespaces.html)",
	}
}

// checkRules validates a native value against a comma separated rule list.
// Every failing rule contributes one error to the result.
func checkRules(v interface{}, rules string) error {
	if rules == "" || v == nil {
		return nil
	}
	var err error
	for _, rule := range strings.Split(rules, ",") {
		verr := check.Var(v, rule)
		if verr == nil {
			continue
		}
		once.Do(initFormatters)
		errs, ok := verr.(validator.ValidationErrors)
		if !ok {
			err = multierr.Append(err, verr)
			continue
		}
		fe := errs[0]
		format, ok := formats[fe.Tag()]
		if !ok {
			err = multierr.Append(err, verr)
			continue
		}
		if !strings.Contains(format, "%") {
			err = multierr.Append(err, fmt.Errorf(format))
			continue
		}
		err = multierr.Append(err, fmt.Errorf(format, fe.Param()))
	}
	return err
}

// native converts a cty value to its closest native Go representation for
// rule checking. Null values are returned as nil and skip rule checks.
func native(v cty.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType():
		out := make([]interface{}, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, native(ev))
		}
		return out
	case ty.IsMapType(), ty.IsObjectType():
		out := make(map[string]interface{}, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = native(ev)
		}
		return out
	default:
		return nil
	}
}

// A ValidationError is returned when attribute validation fails. It carries
// one message per violated field.
type ValidationError struct {
	Type   string            // Resource type the attributes were validated for.
	Fields map[string]string // Violated field name -> message.
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %s", n, e.Fields[n])
	}
	return fmt.Sprintf("invalid attributes for %s: %s", e.Type, strings.Join(parts, "; "))
}

// Validate validates raw attributes against the schema declared for a
// resource type.
//
// On success, the returned object value contains every declared field:
// supplied values are converted to their declared types, defaults are applied
// for optional fields that were not set, and remaining optional fields are
// null. Attribute names are normalized to their canonical snake_case form
// before matching against the schema.
//
// On failure, a ValidationError is returned listing every violated field.
// Validation has no side effects; nothing is recorded anywhere on failure.
func Validate(typename string, s *Schema, raw map[string]cty.Value) (cty.Value, error) {
	violations := make(map[string]string)
	norm := make(map[string]cty.Value, len(s.Fields))

	for k, v := range raw {
		name := CanonicalName(k)
		f, ok := s.Fields[name]
		if !ok {
			violations[name] = "not a declared attribute"
			continue
		}
		if _, dup := norm[name]; dup {
			violations[name] = "set more than once"
			continue
		}
		conv, err := convert.Convert(v, f.Type)
		if err != nil {
			violations[name] = fmt.Sprintf("must be %s", f.Type.FriendlyName())
			continue
		}
		if err := checkRules(native(conv), f.Rules); err != nil {
			violations[name] = err.Error()
			continue
		}
		norm[name] = conv
	}

	for name, f := range s.Fields {
		if _, ok := norm[name]; ok {
			continue
		}
		if _, violated := violations[name]; violated {
			continue
		}
		if f.Required {
			violations[name] = "required"
			continue
		}
		if !f.Default.IsNull() {
			norm[name] = f.Default
			continue
		}
		norm[name] = cty.NullVal(f.Type)
	}

	if len(violations) > 0 {
		return cty.NilVal, &ValidationError{Type: typename, Fields: violations}
	}
	return cty.ObjectVal(norm), nil
}
