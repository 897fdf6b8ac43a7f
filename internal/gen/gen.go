// Package gen writes the registration table of a Go package: one
// newman.Func per exported function, with parameter names and docs read
// from the source and defaults read from //newman:default directives.
package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/doc"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
)

// Defaults for Options.
const (
	DefaultOut = "newman_gen.go"
	DefaultVar = "Module"
)

const (
	defaultDirective = "//newman:default "
	skipDirective    = "//newman:skip"
)

// Options configures one generator run.
type Options struct {
	Dir string // package directory; "" is the working directory
	Out string // output file name inside Dir
	Var string // name of the generated variable
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Out == "" {
		o.Out = DefaultOut
	}
	if o.Var == "" {
		o.Var = DefaultVar
	}
	return o
}

// Error is a generation failure tied to a source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// Run generates the table for opts.Dir and writes it. It returns the path
// written.
func Run(opts Options) (string, error) {
	opts = opts.withDefaults()
	src, err := Generate(opts)
	if err != nil {
		return "", err
	}
	out := filepath.Join(opts.Dir, opts.Out)
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}

// Generate returns the formatted source of the table for opts.Dir.
func Generate(opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	importPath, err := ImportPath(opts.Dir)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	files, err := parsePackage(fset, opts.Dir, opts.Out)
	if err != nil {
		return nil, err
	}
	pkg, err := doc.NewFromFiles(fset, files, importPath, doc.PreserveAST)
	if err != nil {
		return nil, fmt.Errorf("reading docs: %w", err)
	}

	var funcs []*doc.Func
	funcs = append(funcs, pkg.Funcs...)
	for _, t := range pkg.Types {
		funcs = append(funcs, t.Funcs...)
	}
	slices.SortFunc(funcs, func(a, b *doc.Func) int { return strings.Compare(a.Name, b.Name) })

	t := table{Package: pkg.Name, Var: opts.Var, Path: importPath, Doc: strings.TrimSpace(pkg.Doc)}
	for _, f := range funcs {
		if f.Recv != "" || f.Decl.Type.TypeParams != nil || skipped(f.Decl) {
			continue
		}
		entry, err := describe(fset, f)
		if err != nil {
			return nil, err
		}
		if entry.duration {
			t.importTime = true
		}
		t.Funcs = append(t.Funcs, entry)
	}
	return t.render()
}

// ImportPath computes the import path of dir from the nearest go.mod.
func ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for d := abs; ; {
		data, err := os.ReadFile(filepath.Join(d, "go.mod"))
		if err == nil {
			mod := modfile.ModulePath(data)
			if mod == "" {
				return "", fmt.Errorf("%s: no module directive", filepath.Join(d, "go.mod"))
			}
			rel, err := filepath.Rel(d, abs)
			if err != nil {
				return "", err
			}
			if rel == "." {
				return mod, nil
			}
			return path.Join(mod, filepath.ToSlash(rel)), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("reading go.mod: %w", err)
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", fmt.Errorf("no go.mod found above %s", abs)
		}
		d = parent
	}
}

func parsePackage(fset *token.FileSet, dir, out string) ([]*ast.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []*ast.File
	name := ""
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ".go") || strings.HasSuffix(n, "_test.go") || n == out {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, n), nil, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		if name != "" && f.Name.Name != name {
			return nil, fmt.Errorf("%s: found packages %s and %s", dir, name, f.Name.Name)
		}
		name = f.Name.Name
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: no Go files", dir)
	}
	return files, nil
}

func skipped(decl *ast.FuncDecl) bool {
	if decl.Doc == nil {
		return false
	}
	for _, c := range decl.Doc.List {
		if strings.TrimSpace(c.Text) == skipDirective {
			return true
		}
	}
	return false
}

// entry is one generated newman.Func.
type entry struct {
	Name     string
	Params   []string
	Defaults []string // Go expressions
	Doc      string
	duration bool
}

type param struct {
	name     string
	typ      string
	variadic bool
	pos      token.Pos
}

func describe(fset *token.FileSet, f *doc.Func) (entry, error) {
	decl := f.Decl
	errorf := func(pos token.Pos, format string, args ...any) error {
		return &Error{Pos: fset.Position(pos), Msg: f.Name + ": " + fmt.Sprintf(format, args...)}
	}

	var params []param
	for i, field := range decl.Type.Params.List {
		typ := types.ExprString(field.Type)
		variadic := false
		if ell, ok := field.Type.(*ast.Ellipsis); ok {
			typ = types.ExprString(ell.Elt)
			variadic = true
		}
		if i == 0 && typ == "context.Context" {
			continue
		}
		if len(field.Names) == 0 {
			return entry{}, errorf(field.Pos(), "parameter of type %s has no name", typ)
		}
		for _, n := range field.Names {
			if n.Name == "_" {
				return entry{}, errorf(n.Pos(), "blank parameter name")
			}
			params = append(params, param{name: n.Name, typ: typ, variadic: variadic, pos: n.Pos()})
		}
	}

	e := entry{Name: f.Name, Doc: strings.TrimSpace(f.Doc)}
	for _, p := range params {
		e.Params = append(e.Params, p.name)
	}

	defaults, err := directives(decl)
	if err != nil {
		return entry{}, errorf(decl.Pos(), "%v", err)
	}
	if len(defaults) == 0 {
		return e, nil
	}

	fixed := params
	if len(params) > 0 && params[len(params)-1].variadic {
		fixed = params[:len(params)-1]
	}
	for name := range defaults {
		if !slices.ContainsFunc(fixed, func(p param) bool { return p.name == name }) {
			return entry{}, errorf(decl.Pos(), "default for unknown or variadic parameter %q", name)
		}
	}
	first := len(fixed)
	for first > 0 {
		if _, ok := defaults[fixed[first-1].name]; !ok {
			break
		}
		first--
	}
	if len(fixed)-first != len(defaults) {
		return entry{}, errorf(decl.Pos(), "defaults must cover the trailing parameters; %q has none", fixed[first-1].name)
	}
	for _, p := range fixed[first:] {
		expr, isDuration, err := defaultExpr(p.typ, defaults[p.name])
		if err != nil {
			return entry{}, errorf(p.pos, "default for %s: %v", p.name, err)
		}
		e.duration = e.duration || isDuration
		e.Defaults = append(e.Defaults, expr)
	}
	return e, nil
}

// directives reads //newman:default name=value lines.
func directives(decl *ast.FuncDecl) (map[string]string, error) {
	out := make(map[string]string)
	if decl.Doc == nil {
		return out, nil
	}
	for _, c := range decl.Doc.List {
		rest, ok := strings.CutPrefix(c.Text, defaultDirective)
		if !ok {
			continue
		}
		name, value, ok := strings.Cut(strings.TrimSpace(rest), "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("malformed directive %q, want %sname=value", c.Text, defaultDirective)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("duplicate default for %q", name)
		}
		out[name] = value
	}
	return out, nil
}

var basicKinds = map[string]string{
	"bool": "bool", "string": "string",
	"int": "int", "int8": "int", "int16": "int", "int32": "int", "int64": "int",
	"uint": "uint", "uint8": "uint", "uint16": "uint", "uint32": "uint", "uint64": "uint",
	"byte": "uint", "rune": "int",
	"float32": "float", "float64": "float",
}

// defaultExpr converts a directive value to the Go expression emitted for a
// parameter of type typ.
func defaultExpr(typ, value string) (expr string, isDuration bool, err error) {
	if value == "nil" {
		switch typ {
		case "string", "*string", "any", "interface{}":
			return "nil", false, nil
		}
		return "", false, fmt.Errorf("nil needs a string, *string or any parameter, not %s", typ)
	}

	switch typ {
	case "*string":
		return "", false, errors.New("a *string parameter only takes nil")
	case "time.Duration":
		d, err := time.ParseDuration(value)
		if err != nil {
			return "", false, fmt.Errorf("invalid duration %q", value)
		}
		return durationExpr(d), true, nil
	case "any", "interface{}":
		lit, err := literal(value)
		return lit, false, err
	}

	lit, err := literal(value)
	if err != nil {
		return "", false, err
	}
	kind, basic := basicKinds[typ]
	switch {
	case kind == "string":
		if !isString(lit) {
			return "", false, fmt.Errorf("%s is not a string literal", value)
		}
		return lit, false, nil
	case kind == "bool":
		if lit != "true" && lit != "false" {
			return "", false, fmt.Errorf("%s is not a bool", value)
		}
		return lit, false, nil
	case basic:
		if isString(lit) || lit == "true" || lit == "false" {
			return "", false, fmt.Errorf("%s is not a number", value)
		}
		if kind != "float" && strings.ContainsAny(lit, ".eE") && !strings.HasPrefix(lit, "0x") {
			return "", false, fmt.Errorf("%s is not an integer", value)
		}
		if kind == "uint" && strings.HasPrefix(lit, "-") {
			return "", false, fmt.Errorf("%s is negative", value)
		}
		return typ + "(" + lit + ")", false, nil
	}
	// Named types declared in the package are emitted as conversions.
	if _, isIdent := parseIdent(typ); isIdent {
		return typ + "(" + lit + ")", false, nil
	}
	return "", false, fmt.Errorf("unsupported parameter type %s", typ)
}

// literal returns value as a Go basic literal (optionally negated) or a
// boolean constant. Anything else is quoted as a string.
func literal(value string) (string, error) {
	x, err := parser.ParseExpr(value)
	if err != nil {
		return strconv.Quote(value), nil
	}
	switch v := x.(type) {
	case *ast.BasicLit:
		return value, nil
	case *ast.Ident:
		if v.Name == "true" || v.Name == "false" {
			return v.Name, nil
		}
		return strconv.Quote(value), nil
	case *ast.UnaryExpr:
		if lit, ok := v.X.(*ast.BasicLit); ok && v.Op == token.SUB && lit.Kind != token.STRING {
			return value, nil
		}
	}
	return strconv.Quote(value), nil
}

func isString(lit string) bool {
	return strings.HasPrefix(lit, `"`) || strings.HasPrefix(lit, "`")
}

func parseIdent(typ string) (string, bool) {
	x, err := parser.ParseExpr(typ)
	if err != nil {
		return "", false
	}
	id, ok := x.(*ast.Ident)
	if !ok || !ast.IsExported(id.Name) {
		return "", false
	}
	return id.Name, true
}

func durationExpr(d time.Duration) string {
	for _, u := range []struct {
		d    time.Duration
		name string
	}{
		{time.Hour, "time.Hour"},
		{time.Minute, "time.Minute"},
		{time.Second, "time.Second"},
		{time.Millisecond, "time.Millisecond"},
	} {
		if d != 0 && d%u.d == 0 {
			return fmt.Sprintf("%d * %s", d/u.d, u.name)
		}
	}
	return fmt.Sprintf("time.Duration(%d)", int64(d))
}

type table struct {
	Package    string
	Var        string
	Path       string
	Doc        string
	Funcs      []entry
	importTime bool
}

func (t table) render() ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by newman-gen; DO NOT EDIT.\n\npackage %s\n\n", t.Package)
	b.WriteString("import (\n")
	if t.importTime {
		b.WriteString("\t\"time\"\n\n")
	}
	b.WriteString("\t\"github.com/scbrown/newman/pkg/newman\"\n)\n\n")
	fmt.Fprintf(&b, "// %s registers the operations of package %s.\n", t.Var, t.Package)
	fmt.Fprintf(&b, "var %s = newman.Module{\n", t.Var)
	fmt.Fprintf(&b, "Path: %s,\n", strconv.Quote(t.Path))
	if t.Doc != "" {
		fmt.Fprintf(&b, "Doc: %s,\n", strconv.Quote(t.Doc))
	}
	b.WriteString("Funcs: []newman.Func{\n")
	for _, f := range t.Funcs {
		b.WriteString("{\n")
		fmt.Fprintf(&b, "Fn: %s,\n", f.Name)
		if len(f.Params) > 0 {
			quoted := make([]string, len(f.Params))
			for i, p := range f.Params {
				quoted[i] = strconv.Quote(p)
			}
			fmt.Fprintf(&b, "Params: []string{%s},\n", strings.Join(quoted, ", "))
		}
		if len(f.Defaults) > 0 {
			fmt.Fprintf(&b, "Defaults: []any{%s},\n", strings.Join(f.Defaults, ", "))
		}
		if f.Doc != "" {
			fmt.Fprintf(&b, "Doc: %s,\n", strconv.Quote(f.Doc))
		}
		b.WriteString("},\n")
	}
	b.WriteString("},\n}\n")

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting output: %w", err)
	}
	return src, nil
}
