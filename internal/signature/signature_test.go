package signature

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func roundTrip(a, b int, c int, d bool, rest ...string) int { return 0 }

func noParams() {}

func withContext(ctx context.Context, name string) error { return nil }

func durations(every time.Duration, label *string, anything any) (int, error) { return 0, nil }

func TestInspectRoundTrip(t *testing.T) {
	sig, err := Inspect(Func{
		Fn:       roundTrip,
		Params:   []string{"a", "b", "c", "d", "rest"},
		Defaults: []any{1, false},
	})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if sig.Name != "roundTrip" {
		t.Errorf("Name = %q, want roundTrip", sig.Name)
	}
	if sig.Package != "github.com/scbrown/newman/internal/signature" {
		t.Errorf("Package = %q", sig.Package)
	}
	if sig.Variadic == nil || sig.Variadic.Name != "rest" || sig.Variadic.Type.Kind() != reflect.String {
		t.Fatalf("Variadic = %+v, want rest of string", sig.Variadic)
	}
	if sig.Results != ResultsCode {
		t.Errorf("Results = %v, want ResultsCode", sig.Results)
	}

	required, optional := sig.Split()
	if got := names(required); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("required = %v, want [a b]", got)
	}
	if got := names(optional); !reflect.DeepEqual(got, []string{"c", "d"}) {
		t.Errorf("optional = %v, want [c d]", got)
	}
	if def, ok := sig.Default(2); !ok || def != 1 {
		t.Errorf("Default(2) = %v, %v; want 1, true", def, ok)
	}
	if _, ok := sig.Default(1); ok {
		t.Error("Default(1) should not exist")
	}
}

func TestInspectZeroParams(t *testing.T) {
	sig, err := Inspect(Func{Fn: noParams})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(sig.Params) != 0 || sig.Variadic != nil || len(sig.Defaults) != 0 {
		t.Errorf("expected empty signature, got %+v", sig)
	}
	if sig.Results != ResultsNone {
		t.Errorf("Results = %v, want ResultsNone", sig.Results)
	}
}

func TestInspectContext(t *testing.T) {
	sig, err := Inspect(Func{Fn: withContext, Params: []string{"name"}})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !sig.Context {
		t.Error("Context = false, want true")
	}
	if len(sig.Params) != 1 || sig.Params[0].Name != "name" {
		t.Errorf("Params = %+v", sig.Params)
	}
	if sig.Results != ResultsError {
		t.Errorf("Results = %v, want ResultsError", sig.Results)
	}
}

func TestInspectNilDefaults(t *testing.T) {
	sig, err := Inspect(Func{
		Fn:       durations,
		Params:   []string{"every", "label", "anything"},
		Defaults: []any{time.Second, nil, nil},
	})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !IsDuration(sig.Params[0].Type) {
		t.Errorf("every type = %s, want time.Duration", sig.Params[0].Type)
	}
	if sig.Results != ResultsCodeError {
		t.Errorf("Results = %v, want ResultsCodeError", sig.Results)
	}
}

func TestInspectNeverCalls(t *testing.T) {
	called := false
	fn := func(x string) { called = true }
	if _, err := Inspect(Func{Fn: fn, Params: []string{"x"}}); err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if called {
		t.Error("Inspect called the function")
	}
}

func TestInspectErrors(t *testing.T) {
	tests := []struct {
		name string
		f    Func
		want string
	}{
		{"not a func", Func{Fn: 42}, "not a function"},
		{"nil func", Func{Fn: (func())(nil)}, "not a function"},
		{"missing names", Func{Fn: roundTrip, Params: []string{"a"}}, "1 parameter names for 5 parameters"},
		{"empty name", Func{Fn: withContext, Params: []string{""}}, "has no name"},
		{"too many defaults", Func{Fn: withContext, Params: []string{"name"}, Defaults: []any{"x", "y"}}, "2 defaults"},
		{"wrong default type", Func{Fn: withContext, Params: []string{"name"}, Defaults: []any{3}}, "does not fit"},
		{"nil default on int", Func{Fn: func(n int) {}, Params: []string{"n"}, Defaults: []any{nil}}, "nil default"},
		{"slice param", Func{Fn: func(xs []string) {}, Params: []string{"xs"}}, "unsupported type"},
		{"map default", Func{Fn: func(v any) {}, Params: []string{"v"}, Defaults: []any{map[string]int{}}}, "unsupported default type"},
		{"bad results", Func{Fn: func() string { return "" }}, "unsupported results"},
		{"repeated name", Func{Fn: func(a, b int) {}, Params: []string{"a", "a"}}, "duplicate parameter name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.f)
			if err == nil {
				t.Fatalf("Inspect: expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestInspectNotFuncSentinel(t *testing.T) {
	_, err := Inspect(Func{Fn: "nope"})
	if !errors.Is(err, ErrNotFunc) {
		t.Errorf("errors.Is(err, ErrNotFunc) = false for %v", err)
	}
}

func TestNumericDefaultConverts(t *testing.T) {
	_, err := Inspect(Func{Fn: func(ratio float64) {}, Params: []string{"ratio"}, Defaults: []any{2}})
	if err != nil {
		t.Errorf("int default on float64 parameter: %v", err)
	}
}

type thing struct{}

func (thing) Method() {}

func TestDeclaredName(t *testing.T) {
	pkg, name, ok := DeclaredName(roundTrip)
	if !ok || pkg != "github.com/scbrown/newman/internal/signature" || name != "roundTrip" {
		t.Errorf("DeclaredName(roundTrip) = %q, %q, %v", pkg, name, ok)
	}

	pkg, name, ok = DeclaredName(strings.TrimSpace)
	if !ok || pkg != "strings" || name != "TrimSpace" {
		t.Errorf("DeclaredName(strings.TrimSpace) = %q, %q, %v", pkg, name, ok)
	}

	if _, _, ok := DeclaredName(func() {}); ok {
		t.Error("closure reported as declared function")
	}
	if _, _, ok := DeclaredName(thing{}.Method); ok {
		t.Error("method value reported as declared function")
	}
	if _, _, ok := DeclaredName("text"); ok {
		t.Error("string reported as declared function")
	}
}

func TestSplitFuncName(t *testing.T) {
	tests := []struct {
		full   string
		pkg    string
		name   string
		wantOK bool
	}{
		{"github.com/scbrown/newman/internal/demo/calc.Divide", "github.com/scbrown/newman/internal/demo/calc", "Divide", true},
		{"main.Run", "main", "Run", true},
		{"gopkg.in/yaml%2ev3.Marshal", "gopkg.in/yaml.v3", "Marshal", true},
		{"example.com/p.Outer.func1", "example.com/p", "Outer.func1", false},
		{"example.com/p.(*T).Method-fm", "example.com/p", "(*T).Method-fm", false},
		{"example.com/p.Map[...]", "example.com/p", "Map[...]", false},
		{"nodot", "", "", false},
	}
	for _, tt := range tests {
		pkg, name, ok := splitFuncName(tt.full)
		if pkg != tt.pkg || name != tt.name || ok != tt.wantOK {
			t.Errorf("splitFuncName(%q) = %q, %q, %v; want %q, %q, %v",
				tt.full, pkg, name, ok, tt.pkg, tt.name, tt.wantOK)
		}
	}
}

func names(ps []Param) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}
