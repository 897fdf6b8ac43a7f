// Package argspec translates introspected signatures into declarative
// command-line argument specifications: required positionals, typed optional
// flags and a variadic capture.
package argspec

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/scbrown/newman/internal/signature"
)

// Kind says how a parameter is supplied on the command line.
type Kind int

const (
	Positional Kind = iota
	Optional
	Variadic
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case Optional:
		return "optional"
	case Variadic:
		return "variadic"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ValueType is the coercion applied to a flag value before dispatch.
type ValueType int

const (
	Raw ValueType = iota // text kept as given
	Bool                 // permissive, see ParseBool
	String
	Int
	Uint
	Float
	Duration
)

func (v ValueType) String() string {
	switch v {
	case Raw:
		return "raw"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Duration:
		return "duration"
	}
	return fmt.Sprintf("ValueType(%d)", int(v))
}

// Spec is the CLI-facing description of one parameter or top-level argument.
type Spec struct {
	Param    string       // parameter name, the key parsed values are stored under
	Flag     string       // flag name without dashes; empty for positionals
	Kind     Kind
	Type     ValueType    // coercion for the flag value
	GoType   reflect.Type // type of the default; nil when Raw
	Default  any
	Help     string
	TopLevel bool
}

// Specs is the translated argument list of one operation.
type Specs struct {
	Positionals []Spec // declared order
	Optionals   []Spec // declared order
	Variadic    *Spec
}

// All returns every spec: positionals, optionals, then the variadic capture.
func (s Specs) All() []Spec {
	out := make([]Spec, 0, len(s.Positionals)+len(s.Optionals)+1)
	out = append(out, s.Positionals...)
	out = append(out, s.Optionals...)
	if s.Variadic != nil {
		out = append(out, *s.Variadic)
	}
	return out
}

// Translate converts a signature into argument specs. Defaults are
// right-aligned, so the trailing len(Defaults) parameters become optional
// flags and the rest are required positionals.
func Translate(sig signature.Signature) Specs {
	required, optional := sig.Split()

	var specs Specs
	for _, p := range required {
		specs.Positionals = append(specs.Positionals, Spec{
			Param: p.Name,
			Kind:  Positional,
			Type:  Raw,
			Help:  "taken from signature",
		})
	}
	for i, p := range optional {
		def := sig.Defaults[i]
		vt, gt := inferType(def)
		specs.Optionals = append(specs.Optionals, Spec{
			Param:   p.Name,
			Flag:    FlagName(p.Name),
			Kind:    Optional,
			Type:    vt,
			GoType:  gt,
			Default: def,
			Help:    "taken from signature",
		})
	}
	if sig.Variadic != nil {
		specs.Variadic = &Spec{
			Param: sig.Variadic.Name,
			Kind:  Variadic,
			Type:  Raw,
			Help:  "taken from signature",
		}
	}
	return specs
}

// reservedFlags are declared by the parser on every operation.
var reservedFlags = map[string]bool{"help": true}

// Validate reports optional parameters whose flags collide with each other
// or with a reserved flag.
func (s Specs) Validate() error {
	seen := make(map[string]string, len(s.Optionals))
	for _, spec := range s.Optionals {
		if reservedFlags[spec.Flag] {
			return fmt.Errorf("parameter %q: flag --%s is reserved", spec.Param, spec.Flag)
		}
		if prev, dup := seen[spec.Flag]; dup {
			return fmt.Errorf("parameters %q and %q: flag --%s declared twice", prev, spec.Param, spec.Flag)
		}
		seen[spec.Flag] = spec.Param
	}
	return nil
}

// inferType derives the coercion from the runtime type of a default. A nil
// default stays Raw: the value is not guessed from later use.
func inferType(def any) (ValueType, reflect.Type) {
	if def == nil {
		return Raw, nil
	}
	t := reflect.TypeOf(def)
	if signature.IsDuration(t) {
		return Duration, t
	}
	switch t.Kind() {
	case reflect.Bool:
		return Bool, t
	case reflect.String:
		return String, t
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int, t
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Uint, t
	case reflect.Float32, reflect.Float64:
		return Float, t
	}
	return Raw, nil
}

// FlagName normalizes a parameter name to the flag convention:
// "foo_bar" → "foo-bar", "fooBar" → "foo-bar".
func FlagName(param string) string {
	runes := []rune(param)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == '_':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Usage renders a positional or variadic spec for a Use line.
func (s Spec) Usage() string {
	switch s.Kind {
	case Positional:
		return "<" + s.Param + ">"
	case Variadic:
		return "[" + s.Param + "]..."
	}
	return "[--" + s.Flag + " " + strings.ToUpper(s.Type.String()) + "]"
}

var falseWords = map[string]bool{
	"n": true, "no": true, "off": true, "f": true, "false": true, "0": true,
}

// ParseBool is the permissive boolean coercion used for flags whose default
// is a bool. After trimming and lower-casing, "n", "no", "off", "f",
// "false", "0" and the empty string are false; any other text is true.
func ParseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	return !falseWords[s]
}
