// Package invoke calls resolved operations and maps their results to exit
// codes.
package invoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/scbrown/newman/internal/dispatch"
	"github.com/scbrown/newman/internal/signature"
)

// FallbackCode is the exit status when no operation resolved.
const FallbackCode = 2

// OperationError wraps a failure raised by an operation: a returned error or
// a recovered panic.
type OperationError struct {
	Namespace    string
	Operation    string
	InvocationID string
	Err          error
	Panic        any    // recovered value, nil for returned errors
	Stack        []byte // stack at the panic site
}

func (e *OperationError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s %s: panic: %v", e.Namespace, e.Operation, e.Panic)
	}
	return fmt.Sprintf("%s %s: %v", e.Namespace, e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// TypeName is the dynamic type of the underlying failure.
func (e *OperationError) TypeName() string {
	if e.Panic != nil {
		return fmt.Sprintf("panic(%T)", e.Panic)
	}
	return fmt.Sprintf("%T", e.Err)
}

// Invoker calls operations.
type Invoker struct {
	Logger *slog.Logger
}

// New creates an Invoker. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{Logger: logger}
}

// Call runs inv and returns its exit status. Operations returning nothing
// exit 0, (int) exits with the value, (error) exits 1 on failure and
// (int, error) exits with the int, or 1 if the int is 0 and the error is
// non-nil. Failures are logged at error level and returned as
// *OperationError.
func (iv *Invoker) Call(ctx context.Context, inv dispatch.Invocation) (code int, err error) {
	op := inv.Op
	if op == nil {
		return FallbackCode, errors.New("invoke: no operation")
	}
	id := uuid.New().String()
	log := iv.Logger.With(
		"namespace", op.Namespace,
		"operation", op.Name,
		"invocation_id", id,
	)

	in, err := arguments(ctx, op.Fn.Type(), op.Sig.Context, inv.Args)
	if err != nil {
		return 1, fmt.Errorf("invoke %s %s: %w", op.Namespace, op.Name, err)
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		opErr := &OperationError{
			Namespace:    op.Namespace,
			Operation:    op.Name,
			InvocationID: id,
			Panic:        r,
			Stack:        debug.Stack(),
		}
		if e, ok := r.(error); ok {
			opErr.Err = e
		} else {
			opErr.Err = fmt.Errorf("%v", r)
		}
		log.ErrorContext(ctx, "operation panicked",
			"error", opErr,
			"error_type", opErr.TypeName(),
			"stack", string(opErr.Stack),
		)
		code, err = 1, opErr
	}()

	log.DebugContext(ctx, "invoking operation", "call", inv.String())
	out := op.Fn.Call(in)
	code, failure := results(op.Sig.Results, out)
	if failure == nil {
		log.DebugContext(ctx, "operation finished", "exit_code", code)
		return code, nil
	}

	opErr := &OperationError{
		Namespace:    op.Namespace,
		Operation:    op.Name,
		InvocationID: id,
		Err:          failure,
	}
	log.ErrorContext(ctx, "operation failed",
		"error", failure,
		"error_type", opErr.TypeName(),
		"exit_code", code,
	)
	return code, opErr
}

func arguments(ctx context.Context, ft reflect.Type, withContext bool, args []any) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, len(args)+1)
	first := 0
	if withContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
		first = 1
	}
	for i, a := range args {
		idx := first + i
		var pt reflect.Type
		switch {
		case ft.IsVariadic() && idx >= ft.NumIn()-1:
			pt = ft.In(ft.NumIn() - 1).Elem()
		case idx < ft.NumIn():
			pt = ft.In(idx)
		default:
			return nil, fmt.Errorf("too many arguments: %d for %s", len(args), ft)
		}
		if a == nil {
			in = append(in, reflect.Zero(pt))
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("argument %d: %s is not assignable to %s", i, v.Type(), pt)
		}
		if pt.Kind() == reflect.Interface {
			iv := reflect.New(pt).Elem()
			iv.Set(v)
			v = iv
		}
		in = append(in, v)
	}
	want := ft.NumIn()
	if ft.IsVariadic() {
		want--
	}
	if len(in) < want {
		return nil, fmt.Errorf("not enough arguments: %d for %s", len(args), ft)
	}
	return in, nil
}

func results(shape signature.Results, out []reflect.Value) (int, error) {
	switch shape {
	case signature.ResultsCode:
		return int(out[0].Int()), nil
	case signature.ResultsError:
		if err, _ := out[0].Interface().(error); err != nil {
			return 1, err
		}
		return 0, nil
	case signature.ResultsCodeError:
		code := int(out[0].Int())
		if err, _ := out[1].Interface().(error); err != nil {
			if code == 0 {
				code = 1
			}
			return code, err
		}
		return code, nil
	}
	return 0, nil
}
