package invoke

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/scbrown/newman/internal/dispatch"
	"github.com/scbrown/newman/internal/signature"
	"github.com/scbrown/newman/internal/tree"
)

var errBoom = errors.New("boom")

func Nothing() {}
func Code() int { return 3 }
func Fine() error { return nil }
func Fail() error { return errBoom }
func CodeFail() (int, error) { return 4, errBoom }
func ZeroFail() (int, error) { return 0, errBoom }
func CodeFine() (int, error) { return 5, nil }
func Explode() { panic("kaboom") }
func ExplodeErr() { panic(errBoom) }
func Join(sep string, parts ...string) int {
	return len(strings.Join(parts, sep))
}

type ctxKey struct{}

var seen []any

func Capture(ctx context.Context, name string, note *string, extra any) {
	seen = []any{ctx.Value(ctxKey{}), name, note, extra}
}

func registered(t *testing.T, f signature.Func) *tree.Operation {
	t.Helper()
	tr := tree.New()
	ns, err := tr.Register(tree.Module{
		Path:  "github.com/scbrown/newman/internal/invoke",
		Funcs: []signature.Func{f},
	}, "ops")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	ops := ns.Operations()
	if len(ops) != 1 {
		t.Fatalf("registered %d operations, want 1", len(ops))
	}
	return ops[0]
}

func jsonInvoker(buf *bytes.Buffer) *Invoker {
	return New(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestCallExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		fn      any
		want    int
		wantErr bool
	}{
		{"no results", Nothing, 0, false},
		{"int", Code, 3, false},
		{"nil error", Fine, 0, false},
		{"error", Fail, 1, true},
		{"code and error", CodeFail, 4, true},
		{"zero code and error", ZeroFail, 1, true},
		{"code and nil error", CodeFine, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := registered(t, signature.Func{Fn: tt.fn})
			var buf bytes.Buffer
			code, err := jsonInvoker(&buf).Call(context.Background(), dispatch.Invocation{Op: op})
			if code != tt.want {
				t.Errorf("code = %d, want %d", code, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var opErr *OperationError
			if !errors.As(err, &opErr) {
				t.Fatalf("err = %T, want *OperationError", err)
			}
			if !errors.Is(err, errBoom) {
				t.Error("OperationError does not unwrap to the returned error")
			}
			if opErr.Namespace != "ops" || opErr.InvocationID == "" {
				t.Errorf("opErr = %+v", opErr)
			}
		})
	}
}

func TestCallLogsFailureWithTypeAndMessage(t *testing.T) {
	op := registered(t, signature.Func{Fn: Fail})
	var buf bytes.Buffer
	if _, err := jsonInvoker(&buf).Call(context.Background(), dispatch.Invocation{Op: op}); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	for _, want := range []string{
		`"level":"ERROR"`,
		`"msg":"operation failed"`,
		`"error":"boom"`,
		`"error_type":"*errors.errorString"`,
		`"operation":"fail"`,
		`"invocation_id":`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

func TestCallRecoversPanic(t *testing.T) {
	tests := []struct {
		name   string
		fn     any
		typ    string
		isBoom bool
	}{
		{"string panic", Explode, "panic(string)", false},
		{"error panic", ExplodeErr, "panic(*errors.errorString)", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := registered(t, signature.Func{Fn: tt.fn})
			var buf bytes.Buffer
			code, err := jsonInvoker(&buf).Call(context.Background(), dispatch.Invocation{Op: op})
			if code != 1 {
				t.Errorf("code = %d, want 1", code)
			}
			var opErr *OperationError
			if !errors.As(err, &opErr) {
				t.Fatalf("err = %v, want *OperationError", err)
			}
			if opErr.Panic == nil || len(opErr.Stack) == 0 {
				t.Errorf("panic not captured: %+v", opErr)
			}
			if opErr.TypeName() != tt.typ {
				t.Errorf("TypeName() = %q, want %q", opErr.TypeName(), tt.typ)
			}
			if errors.Is(err, errBoom) != tt.isBoom {
				t.Errorf("errors.Is(err, errBoom) = %v, want %v", !tt.isBoom, tt.isBoom)
			}
			if !strings.Contains(buf.String(), `"msg":"operation panicked"`) {
				t.Errorf("panic not logged:\n%s", buf.String())
			}
		})
	}
}

func TestCallVariadic(t *testing.T) {
	op := registered(t, signature.Func{Fn: Join, Params: []string{"sep", "parts"}})
	var buf bytes.Buffer
	code, err := jsonInvoker(&buf).Call(context.Background(), dispatch.Invocation{
		Op:   op,
		Args: []any{"--", "ab", "cd", "e"},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if code != len("ab--cd--e") {
		t.Errorf("code = %d, want %d", code, len("ab--cd--e"))
	}

	code, err = jsonInvoker(&buf).Call(context.Background(), dispatch.Invocation{Op: op, Args: []any{","}})
	if err != nil || code != 0 {
		t.Errorf("empty variadic: code = %d, err = %v", code, err)
	}
}

func TestCallPassesContextAndNilArgs(t *testing.T) {
	op := registered(t, signature.Func{
		Fn:       Capture,
		Params:   []string{"name", "note", "extra"},
		Defaults: []any{nil, nil},
	})
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	var buf bytes.Buffer
	if _, err := jsonInvoker(&buf).Call(ctx, dispatch.Invocation{Op: op, Args: []any{"x", nil, nil}}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := []any{"marker", "x", (*string)(nil), nil}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %#v, want %#v", seen, want)
	}
}

func TestCallRejectsMismatchedArgs(t *testing.T) {
	op := registered(t, signature.Func{Fn: Join, Params: []string{"sep", "parts"}})
	var buf bytes.Buffer
	if _, err := jsonInvoker(&buf).Call(context.Background(), dispatch.Invocation{Op: op, Args: []any{1}}); err == nil {
		t.Error("expected error for int passed as string")
	}
	if _, err := jsonInvoker(&buf).Call(context.Background(), dispatch.Invocation{Op: op}); err == nil {
		t.Error("expected error for missing argument")
	}
	if code, err := New(nil).Call(context.Background(), dispatch.Invocation{}); err == nil || code != FallbackCode {
		t.Errorf("nil operation: code = %d, err = %v", code, err)
	}
}
