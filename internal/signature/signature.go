// Package signature describes Go functions the way a command line sees them:
// ordered parameter names, an optional variadic tail and defaults aligned to
// the rightmost parameters.
//
// Go keeps no parameter names at run time, so names and defaults arrive in a
// Func descriptor (written by hand or emitted by newman-gen) and are checked
// against the function's reflect.Type. Inspect never calls the function.
package signature

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"time"
)

// Func is the registration descriptor for one callable.
type Func struct {
	Fn       any      // the function value
	Params   []string // one name per parameter, variadic included, leading context.Context excluded
	Defaults []any    // defaults for the trailing non-variadic parameters
	Doc      string   // help text
}

// Param is one named, typed parameter. For the variadic parameter Type is the
// element type.
type Param struct {
	Name string
	Type reflect.Type
}

// Results describes what a function returns.
type Results int

const (
	ResultsNone      Results = iota // func(...)
	ResultsCode                     // func(...) int
	ResultsError                    // func(...) error
	ResultsCodeError                // func(...) (int, error)
)

// Signature is the introspected form of a Func.
type Signature struct {
	Package  string // import path of the declaring package, "" if unknown
	Name     string // Go identifier
	Context  bool   // first parameter is a context.Context
	Params   []Param
	Variadic *Param
	Defaults []any // right-aligned to Params
	Results  Results
}

// ErrNotFunc is returned when a descriptor does not hold a function.
var ErrNotFunc = errors.New("not a function")

var (
	contextType   = reflect.TypeFor[context.Context]()
	errorType     = reflect.TypeFor[error]()
	durationType  = reflect.TypeFor[time.Duration]()
	stringPtrType = reflect.TypeFor[*string]()
)

// Inspect validates f against its function type and returns the signature.
func Inspect(f Func) (Signature, error) {
	v := reflect.ValueOf(f.Fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Signature{}, fmt.Errorf("inspect %T: %w", f.Fn, ErrNotFunc)
	}
	t := v.Type()

	var sig Signature
	sig.Package, sig.Name, _ = DeclaredName(f.Fn)
	label := sig.Name
	if label == "" {
		label = t.String()
	}

	first := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		sig.Context = true
		first = 1
	}

	n := t.NumIn() - first
	if len(f.Params) != n {
		return Signature{}, fmt.Errorf("%s: %d parameter names for %d parameters", label, len(f.Params), n)
	}

	seen := make(map[string]bool, n)
	for i, name := range f.Params {
		if name == "" || name == "_" {
			return Signature{}, fmt.Errorf("%s: parameter %d has no name", label, i)
		}
		if seen[name] {
			return Signature{}, fmt.Errorf("%s: duplicate parameter name %q", label, name)
		}
		seen[name] = true

		typ := t.In(first + i)
		variadic := t.IsVariadic() && i == n-1
		if variadic {
			typ = typ.Elem()
		}
		if !Scalar(typ) {
			return Signature{}, fmt.Errorf("%s: parameter %q has unsupported type %s", label, name, typ)
		}
		p := Param{Name: name, Type: typ}
		if variadic {
			sig.Variadic = &p
		} else {
			sig.Params = append(sig.Params, p)
		}
	}

	if len(f.Defaults) > len(sig.Params) {
		return Signature{}, fmt.Errorf("%s: %d defaults for %d non-variadic parameters", label, len(f.Defaults), len(sig.Params))
	}
	offset := len(sig.Params) - len(f.Defaults)
	for i, def := range f.Defaults {
		p := sig.Params[offset+i]
		if err := checkDefault(p, def); err != nil {
			return Signature{}, fmt.Errorf("%s: %w", label, err)
		}
	}
	sig.Defaults = slices.Clone(f.Defaults)

	res, err := results(t)
	if err != nil {
		return Signature{}, fmt.Errorf("%s: %w", label, err)
	}
	sig.Results = res
	return sig, nil
}

// Split returns the required and optional parameters. The trailing
// len(Defaults) parameters are optional.
func (s Signature) Split() (required, optional []Param) {
	cut := len(s.Params) - len(s.Defaults)
	return s.Params[:cut], s.Params[cut:]
}

// Default returns the default for the parameter at index i of Params.
func (s Signature) Default(i int) (any, bool) {
	j := i - (len(s.Params) - len(s.Defaults))
	if j < 0 || j >= len(s.Defaults) {
		return nil, false
	}
	return s.Defaults[j], true
}

// Scalar reports whether values of t can be read from a single command-line
// token.
func Scalar(t reflect.Type) bool {
	if t == stringPtrType || isAny(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// IsDuration reports whether t is time.Duration.
func IsDuration(t reflect.Type) bool { return t == durationType }

func isAny(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

func checkDefault(p Param, def any) error {
	if def == nil {
		if p.Type.Kind() == reflect.String || p.Type == stringPtrType || isAny(p.Type) {
			return nil
		}
		return fmt.Errorf("parameter %q: nil default needs a string, *string or any parameter, not %s", p.Name, p.Type)
	}
	dt := reflect.TypeOf(def)
	if dt.Kind() == reflect.Pointer || !Scalar(dt) {
		return fmt.Errorf("parameter %q: unsupported default type %s", p.Name, dt)
	}
	switch {
	case isAny(p.Type), dt.AssignableTo(p.Type), dt.Kind() == p.Type.Kind():
		return nil
	case numeric(dt) && numeric(p.Type):
		return nil
	}
	return fmt.Errorf("parameter %q: default of type %s does not fit %s", p.Name, dt, p.Type)
}

func numeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isInt(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func results(t reflect.Type) (Results, error) {
	switch t.NumOut() {
	case 0:
		return ResultsNone, nil
	case 1:
		out := t.Out(0)
		if out == errorType {
			return ResultsError, nil
		}
		if isInt(out) {
			return ResultsCode, nil
		}
	case 2:
		if isInt(t.Out(0)) && t.Out(1) == errorType {
			return ResultsCodeError, nil
		}
	}
	return 0, fmt.Errorf("unsupported results %s: want (), (int), (error) or (int, error)", t)
}
