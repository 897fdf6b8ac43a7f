package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/scbrown/newman/internal/argspec"
	"github.com/spf13/pflag"
)

// specValue is a pflag.Value that coerces text according to a Spec.
type specValue struct {
	spec argspec.Spec
	val  any
}

var _ pflag.Value = (*specValue)(nil)

func newSpecValue(spec argspec.Spec) *specValue {
	return &specValue{spec: spec, val: spec.Default}
}

func (v *specValue) String() string {
	if v == nil || v.val == nil {
		return ""
	}
	return fmt.Sprint(v.val)
}

// Type names the value in help output. pflag hides the placeholder for
// "bool", and these flags always take a value, so Bool is "boolean".
func (v *specValue) Type() string {
	switch v.spec.Type {
	case argspec.Raw:
		return "text"
	case argspec.Bool:
		return "boolean"
	}
	return v.spec.Type.String()
}

func (v *specValue) Set(s string) error {
	val, err := coerce(v.spec, s)
	if err != nil {
		return err
	}
	v.val = val
	return nil
}

func (v *specValue) get() any { return v.val }

// flagUsage is the help text of v. pflag leaves out defaults that look like
// zero values, so those are spelled out here.
func flagUsage(v *specValue) string {
	if v.spec.Default == nil {
		return v.spec.Help + " (default nil)"
	}
	switch def := v.String(); def {
	case "", "0", "false":
		if v.Type() == "string" {
			def = strconv.Quote(def)
		}
		return fmt.Sprintf("%s (default %s)", v.spec.Help, def)
	}
	return v.spec.Help
}

// coerce converts s to the spec's value type. Named types (time.Duration,
// int32, user string types) keep the default's exact type.
func coerce(spec argspec.Spec, s string) (any, error) {
	switch spec.Type {
	case argspec.Raw:
		return s, nil
	case argspec.Bool:
		return convert(reflect.ValueOf(argspec.ParseBool(s)), spec.GoType), nil
	case argspec.String:
		return convert(reflect.ValueOf(s), spec.GoType), nil
	case argspec.Duration:
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		return d, nil
	case argspec.Int:
		n, err := strconv.ParseInt(s, 10, spec.GoType.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		rv := reflect.New(spec.GoType).Elem()
		rv.SetInt(n)
		return rv.Interface(), nil
	case argspec.Uint:
		n, err := strconv.ParseUint(s, 10, spec.GoType.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid unsigned integer %q", s)
		}
		rv := reflect.New(spec.GoType).Elem()
		rv.SetUint(n)
		return rv.Interface(), nil
	case argspec.Float:
		f, err := strconv.ParseFloat(s, spec.GoType.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		rv := reflect.New(spec.GoType).Elem()
		rv.SetFloat(f)
		return rv.Interface(), nil
	}
	return nil, fmt.Errorf("unsupported value type %s", spec.Type)
}

func convert(v reflect.Value, t reflect.Type) any {
	if t == nil || v.Type() == t {
		return v.Interface()
	}
	return v.Convert(t).Interface()
}
