// Package dispatch turns parsed command-line values into the ordered call of
// one operation.
package dispatch

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/scbrown/newman/internal/argspec"
	"github.com/scbrown/newman/internal/signature"
	"github.com/scbrown/newman/internal/tree"
)

// Invocation is one resolved call: the operation, the top-level values and
// the real arguments in declared order with the variadic tail flattened.
type Invocation struct {
	Op       *tree.Operation
	TopLevel map[string]any
	Args     []any
}

// ArgumentError reports a value that cannot be converted to its parameter's
// Go type.
type ArgumentError struct {
	Param string
	Value any
	Type  reflect.Type
	Err   error
}

func (e *ArgumentError) Error() string {
	msg := fmt.Sprintf("argument %q: cannot use %v as %s", e.Param, e.Value, e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// Resolve builds the invocation of op from values, the merged map produced
// by the parser. Keys named in topLevel go to Invocation.TopLevel; every
// declared parameter is looked up by name. A parameter that shares its name
// with a top-level argument reads the same merged value as the top-level
// scope does.
func Resolve(values map[string]any, op *tree.Operation, topLevel []string) (Invocation, error) {
	inv := Invocation{
		Op:       op,
		TopLevel: make(map[string]any, len(topLevel)),
	}
	for _, name := range topLevel {
		if v, ok := values[name]; ok {
			inv.TopLevel[name] = v
		}
	}

	sig := op.Sig
	inv.Args = make([]any, 0, len(sig.Params))
	for i, p := range sig.Params {
		v, ok := values[p.Name]
		if !ok {
			def, hasDefault := sig.Default(i)
			if !hasDefault {
				return Invocation{}, &ArgumentError{Param: p.Name, Type: p.Type, Err: fmt.Errorf("no value given")}
			}
			v = def
		}
		arg, err := Convert(v, p.Type)
		if err != nil {
			return Invocation{}, &ArgumentError{Param: p.Name, Value: v, Type: p.Type, Err: err}
		}
		inv.Args = append(inv.Args, arg)
	}

	if vp := sig.Variadic; vp != nil {
		rest, err := variadicValues(values[vp.Name])
		if err != nil {
			return Invocation{}, &ArgumentError{Param: vp.Name, Value: values[vp.Name], Type: vp.Type, Err: err}
		}
		for _, v := range rest {
			arg, err := Convert(v, vp.Type)
			if err != nil {
				return Invocation{}, &ArgumentError{Param: vp.Name, Value: v, Type: vp.Type, Err: err}
			}
			inv.Args = append(inv.Args, arg)
		}
	}
	return inv, nil
}

func variadicValues(v any) ([]any, error) {
	switch rest := v.(type) {
	case nil:
		return nil, nil
	case []string:
		out := make([]any, len(rest))
		for i, s := range rest {
			out[i] = s
		}
		return out, nil
	case []any:
		return rest, nil
	}
	return nil, fmt.Errorf("variadic values must be a list, got %T", v)
}

// Convert returns v as a value of type t. Text is parsed: booleans with the
// permissive argspec.ParseBool, durations with time.ParseDuration, numbers
// in base 10. Typed values are converted when no precision is lost. A nil
// v yields the zero value of t.
func Convert(v any, t reflect.Type) (any, error) {
	if v == nil {
		return reflect.Zero(t).Interface(), nil
	}
	if t.Kind() == reflect.Interface {
		return v, nil
	}
	if s, ok := v.(string); ok {
		return parse(s, t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return v, nil
	}
	if t.Kind() == reflect.Pointer {
		if rv.Kind() == reflect.String {
			return parse(rv.String(), t)
		}
		return nil, fmt.Errorf("unsupported conversion from %s", rv.Type())
	}
	fromString, toString := rv.Kind() == reflect.String, t.Kind() == reflect.String
	if !rv.CanConvert(t) || fromString != toString {
		return nil, fmt.Errorf("unsupported conversion from %s", rv.Type())
	}
	out := rv.Convert(t)
	signFlip := (rv.CanInt() && rv.Int() < 0 && out.CanUint()) || (rv.CanUint() && out.CanInt() && out.Int() < 0)
	if back := out.Convert(rv.Type()); signFlip || !back.Equal(rv) {
		return nil, fmt.Errorf("value %v does not fit", v)
	}
	return out.Interface(), nil
}

func parse(s string, t reflect.Type) (any, error) {
	if signature.IsDuration(t) {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		return d, nil
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported pointer type %s", t)
		}
		p := reflect.New(t.Elem())
		p.Elem().SetString(s)
		return p.Interface(), nil
	case reflect.String:
		out.SetString(s)
	case reflect.Bool:
		out.SetBool(argspec.ParseBool(s))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid unsigned integer %q", s)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		out.SetFloat(f)
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", t)
	}
	return out.Interface(), nil
}

// String renders the call for dry runs, e.g. calc.divide(1, 3, 2).
func (inv Invocation) String() string {
	parts := make([]string, len(inv.Args))
	for i, a := range inv.Args {
		parts[i] = formatArg(a)
	}
	name := "<nil>"
	if inv.Op != nil {
		name = inv.Op.Namespace + "." + inv.Op.Name
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func formatArg(a any) string {
	switch v := a.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case *string:
		if v == nil {
			return "nil"
		}
		return "&" + strconv.Quote(*v)
	case time.Duration:
		return v.String()
	}
	rv := reflect.ValueOf(a)
	if rv.Kind() == reflect.String {
		return strconv.Quote(rv.String())
	}
	return fmt.Sprint(a)
}
