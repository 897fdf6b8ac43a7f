package argspec

import (
	"fmt"
	"reflect"

	"github.com/scbrown/newman/internal/signature"
)

// ConfigurationError reports a malformed top-level argument registration.
type ConfigurationError struct {
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("top-level argument %q: %s", e.Name, e.Reason)
}

// reservedTopLevel are the flags the root command declares itself.
var reservedTopLevel = map[string]bool{"help": true, "version": true}

// TopLevel builds the spec of a global flag. Top-level arguments are always
// optional, so a non-nil scalar default is required.
func TopLevel(name string, def any) (Spec, error) {
	if name == "" {
		return Spec{}, &ConfigurationError{Name: name, Reason: "empty name"}
	}
	if def == nil {
		return Spec{}, &ConfigurationError{Name: name, Reason: "a default value is required"}
	}
	if flag := FlagName(name); reservedTopLevel[flag] {
		return Spec{}, &ConfigurationError{Name: name, Reason: fmt.Sprintf("flag --%s is reserved", flag)}
	}
	t := reflect.TypeOf(def)
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface || !signature.Scalar(t) {
		return Spec{}, &ConfigurationError{Name: name, Reason: fmt.Sprintf("unsupported default type %s", t)}
	}
	vt, gt := inferType(def)
	return Spec{
		Param:    name,
		Flag:     FlagName(name),
		Kind:     Optional,
		Type:     vt,
		GoType:   gt,
		Default:  def,
		Help:     "global option",
		TopLevel: true,
	}, nil
}
