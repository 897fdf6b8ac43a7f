// Package tree builds the two-level command tree: namespaces keyed by
// subcommand name, each holding the operations derived from one Go package.
package tree

import (
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"reflect"
	"strings"
	"unicode"

	"github.com/scbrown/newman/internal/argspec"
	"github.com/scbrown/newman/internal/signature"
)

var (
	// ErrDuplicateNamespace is returned when a subcommand name is registered twice.
	ErrDuplicateNamespace = errors.New("namespace already registered")
	// ErrDuplicateOperation is returned when two functions map to the same operation name.
	ErrDuplicateOperation = errors.New("operation already registered")
	// ErrFrozen is returned when registering after the tree was handed to a parser.
	ErrFrozen = errors.New("command tree is frozen")
)

// Module groups the functions of one Go package under a namespace.
type Module struct {
	Path  string           // import path the functions must be declared in
	Doc   string           // namespace help
	Funcs []signature.Func // candidate operations
}

// Operation is one invokable leaf command.
type Operation struct {
	Name      string
	Namespace string
	Doc       string
	Fn        reflect.Value
	Sig       signature.Signature
}

// Namespace holds the operations registered under one subcommand.
type Namespace struct {
	Name  string
	Doc   string
	ops   map[string]*Operation
	order []string
}

// Operations returns the namespace's operations in registration order.
func (n *Namespace) Operations() []*Operation {
	out := make([]*Operation, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.ops[name])
	}
	return out
}

// Operation returns the named operation.
func (n *Namespace) Operation(name string) (*Operation, bool) {
	op, ok := n.ops[name]
	return op, ok
}

// Tree is the root container of all namespaces.
type Tree struct {
	namespaces map[string]*Namespace
	order      []string
	frozen     bool
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{namespaces: make(map[string]*Namespace)}
}

// Register enumerates m's eligible functions and stores one operation per
// function under subcommand. Ineligible functions (unexported, declared
// outside m.Path, closures, methods) are skipped without error. The tree is
// left untouched when any eligible function fails introspection or declares
// flags that collide.
func (t *Tree) Register(m Module, subcommand string) (*Namespace, error) {
	if t.frozen {
		return nil, fmt.Errorf("register %q: %w", subcommand, ErrFrozen)
	}
	if subcommand == "" {
		return nil, errors.New("register: empty subcommand name")
	}
	if _, ok := t.namespaces[subcommand]; ok {
		return nil, fmt.Errorf("register %q: %w", subcommand, ErrDuplicateNamespace)
	}
	if m.Path == "" {
		return nil, fmt.Errorf("register %q: module has no import path", subcommand)
	}

	ns := &Namespace{
		Name: subcommand,
		Doc:  strings.TrimSpace(m.Doc),
		ops:  make(map[string]*Operation),
	}
	for _, f := range m.Funcs {
		pkg, goName, ok := signature.DeclaredName(f.Fn)
		if !ok || !Eligible(goName) || pkg != m.Path {
			slog.Debug("skipping function", "namespace", subcommand, "package", pkg, "name", goName)
			continue
		}
		sig, err := signature.Inspect(f)
		if err != nil {
			return nil, fmt.Errorf("register %q: %w", subcommand, err)
		}
		name := OperationName(goName)
		if err := argspec.Translate(sig).Validate(); err != nil {
			return nil, fmt.Errorf("register %q: %s: %w", subcommand, name, err)
		}
		op := &Operation{
			Name:      name,
			Namespace: subcommand,
			Doc:       strings.TrimSpace(f.Doc),
			Fn:        reflect.ValueOf(f.Fn),
			Sig:       sig,
		}
		if _, dup := ns.ops[op.Name]; dup {
			return nil, fmt.Errorf("register %q: %s: %w", subcommand, op.Name, ErrDuplicateOperation)
		}
		ns.ops[op.Name] = op
		ns.order = append(ns.order, op.Name)
	}

	t.namespaces[subcommand] = ns
	t.order = append(t.order, subcommand)
	return ns, nil
}

// Freeze stops further registration.
func (t *Tree) Freeze() { t.frozen = true }

// Frozen reports whether Freeze was called.
func (t *Tree) Frozen() bool { return t.frozen }

// Namespaces returns all namespaces in registration order.
func (t *Tree) Namespaces() []*Namespace {
	out := make([]*Namespace, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.namespaces[name])
	}
	return out
}

// Namespace returns the named namespace.
func (t *Tree) Namespace(name string) (*Namespace, bool) {
	ns, ok := t.namespaces[name]
	return ns, ok
}

// Lookup finds an operation by namespace and operation name.
func (t *Tree) Lookup(namespace, operation string) (*Operation, bool) {
	ns, ok := t.namespaces[namespace]
	if !ok {
		return nil, false
	}
	return ns.Operation(operation)
}

// Eligible reports whether a Go identifier may become an operation. Go marks
// private names with a lowercase initial.
func Eligible(goName string) bool {
	return goName != "" && !strings.HasPrefix(goName, "_") && token.IsExported(goName)
}

// OperationName converts a Go identifier to a command name:
// "ListTasks" → "list-tasks", "HTTPGet" → "http-get".
func OperationName(goName string) string {
	runes := []rune(goName)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
			if prevLower || (prevUpper && nextLower) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '_' {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
