package signature

import (
	"reflect"
	"runtime"
	"strings"
)

// DeclaredName returns the import path and identifier of a top-level
// function. ok is false for closures, method values, generic instantiations
// and anything that is not a function.
func DeclaredName(fn any) (pkg, name string, ok bool) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", "", false
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return "", "", false
	}
	return splitFuncName(rf.Name())
}

// splitFuncName splits a runtime symbol such as
// "github.com/scbrown/newman/internal/demo/calc.Divide". The runtime escapes
// dots in the last path element as %2e.
func splitFuncName(full string) (pkg, name string, ok bool) {
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot < 0 {
		return "", "", false
	}
	dot += slash + 1
	pkg = strings.ReplaceAll(full[:dot], "%2e", ".")
	name = full[dot+1:]
	if name == "" || strings.ContainsAny(name, ".[]()*-") {
		return pkg, name, false
	}
	return pkg, name, true
}
