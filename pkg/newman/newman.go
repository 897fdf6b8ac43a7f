// Package newman builds a command-line interface from plain Go functions.
//
// Each registered Module becomes a namespace and each exported function in
// it an operation:
//
//	app := newman.New("tool", "Operations tooling")
//	if err := app.Register(calc.Module, "calc"); err != nil {
//		log.Fatal(err)
//	}
//	app.Main(context.Background())
//
// Required parameters become positional arguments, parameters with defaults
// become flags and a variadic parameter takes the remaining arguments. The
// Module tables are usually written by newman-gen.
package newman

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/scbrown/newman/internal/alert"
	"github.com/scbrown/newman/internal/argspec"
	"github.com/scbrown/newman/internal/cli"
	"github.com/scbrown/newman/internal/dispatch"
	"github.com/scbrown/newman/internal/invoke"
	"github.com/scbrown/newman/internal/signature"
	"github.com/scbrown/newman/internal/tree"
)

type (
	// Func describes one function: its value, parameter names, trailing
	// defaults and help text.
	Func = signature.Func
	// Module groups the functions of one Go package.
	Module = tree.Module

	ConfigurationError = argspec.ConfigurationError
	DispatchMismatch   = cli.DispatchMismatch
	ArgumentError      = dispatch.ArgumentError
	OperationError     = invoke.OperationError

	// Sink receives logged operation failures.
	Sink     = alert.Sink
	SinkFunc = alert.SinkFunc
	Severity = alert.Severity
)

// Severities for AttachSink.
const (
	Info     = alert.Info
	Warning  = alert.Warning
	Error    = alert.Error
	Critical = alert.Critical
)

// FallbackCode is the exit status when no operation was named.
const FallbackCode = invoke.FallbackCode

// State is the lifecycle stage of an App.
type State int

const (
	Unparsed State = iota
	Parsed
	Dispatched
	Exited
)

func (s State) String() string {
	switch s {
	case Unparsed:
		return "unparsed"
	case Parsed:
		return "parsed"
	case Dispatched:
		return "dispatched"
	case Exited:
		return "exited"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ExitError carries a non-zero exit status out of Run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// App is the root container: top-level arguments plus registered namespaces.
type App struct {
	name        string
	description string
	args        []string
	out         io.Writer
	errOut      io.Writer
	logger      *slog.Logger

	tree     *tree.Tree
	topLevel []argspec.Spec
	state    State
	parsed   *Invocation
	parseErr error
}

// Option configures an App.
type Option func(*App)

// WithArgs sets the command line to parse instead of os.Args[1:].
func WithArgs(args []string) Option {
	return func(a *App) { a.args = args }
}

// WithOutput redirects help output and diagnostics.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithLogger sets the logger operations failures are reported through.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// New creates an App named name.
func New(name, description string, opts ...Option) *App {
	a := &App{
		name:        name,
		description: description,
		out:         os.Stdout,
		errOut:      os.Stderr,
		tree:        tree.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.args == nil {
		a.args = os.Args[1:]
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// AddTopLevel declares a global flag. Its type is inferred from def, which
// must be a non-nil scalar. Top-level values are never passed to operations.
func (a *App) AddTopLevel(name string, def any) error {
	if a.state != Unparsed {
		return fmt.Errorf("add top-level %q: command line already parsed", name)
	}
	spec, err := argspec.TopLevel(name, def)
	if err != nil {
		return err
	}
	for _, s := range a.topLevel {
		if s.Param == name || s.Flag == spec.Flag {
			return &argspec.ConfigurationError{Name: name, Reason: "declared twice"}
		}
	}
	a.topLevel = append(a.topLevel, spec)
	return nil
}

// Register adds m's exported functions as operations of namespace
// subcommand.
func (a *App) Register(m Module, subcommand string) error {
	if a.state != Unparsed {
		return fmt.Errorf("register %q: %w", subcommand, tree.ErrFrozen)
	}
	_, err := a.tree.Register(m, subcommand)
	return err
}

// AttachSink reports logged failures at or above threshold to sink. Sinks
// stack; each call wraps the current logger.
func (a *App) AttachSink(sink Sink, threshold Severity) {
	a.logger = slog.New(alert.NewHandler(a.logger.Handler(), sink, threshold))
}

// SetLogger replaces the logger. Sinks attached earlier are dropped.
func (a *App) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	a.logger = logger
}

// Logger returns the logger in use, sinks included.
func (a *App) Logger() *slog.Logger { return a.logger }

// State reports the lifecycle stage.
func (a *App) State() State { return a.state }

// Invocation is a parsed command line.
type Invocation struct {
	result   cli.Result
	resolved dispatch.Invocation
	topLevel map[string]any
}

// Operation returns the resolved namespace and operation names. ok is false
// when help was shown or no operation matched.
func (p *Invocation) Operation() (namespace, operation string, ok bool) {
	if p.result.Op == nil {
		return "", "", false
	}
	return p.result.Op.Namespace, p.result.Op.Name, true
}

// TopLevelArgs returns the values of the top-level arguments.
func (p *Invocation) TopLevelArgs() map[string]any { return p.topLevel }

// RealArgs returns the operation's arguments in declared order with the
// variadic values flattened.
func (p *Invocation) RealArgs() []any { return p.resolved.Args }

// Mismatch returns the dispatch mismatch, nil when an operation matched.
func (p *Invocation) Mismatch() *DispatchMismatch { return p.result.Mismatch }

// Help reports whether help or version output was shown.
func (p *Invocation) Help() bool { return p.result.Help }

// String renders the resolved call, for example calc.divide(1, 3, 2).
func (p *Invocation) String() string {
	if p.resolved.Op == nil {
		return ""
	}
	return p.resolved.String()
}

// Parse parses the command line once. Later calls return the cached result
// without rebuilding the command tree. The error reports malformed input.
func (a *App) Parse() (*Invocation, error) {
	if a.state != Unparsed {
		return a.parsed, a.parseErr
	}
	a.state = Parsed
	a.tree.Freeze()
	a.parsed, a.parseErr = a.parse()
	return a.parsed, a.parseErr
}

func (a *App) parse() (*Invocation, error) {
	cmd, err := cli.Build(cli.Root{
		Name:        a.name,
		Description: a.description,
		TopLevel:    a.topLevel,
		Out:         a.out,
		Err:         a.errOut,
	}, a.tree)
	if err != nil {
		return nil, err
	}

	res, err := cmd.Execute(a.args)
	p := &Invocation{result: res, topLevel: make(map[string]any, len(a.topLevel))}
	names := make([]string, len(a.topLevel))
	for i, s := range a.topLevel {
		names[i] = s.Param
		if v, ok := res.Values[s.Param]; ok {
			p.topLevel[s.Param] = v
		}
	}
	if err != nil {
		return p, err
	}
	if res.Op == nil {
		return p, nil
	}
	inv, err := dispatch.Resolve(res.Values, res.Op, names)
	if err != nil {
		return p, err
	}
	p.resolved = inv
	p.topLevel = inv.TopLevel
	return p, nil
}

// Run parses the command line and calls the selected operation. It returns
// the exit status: the operation's status, FallbackCode when no operation
// was named, 1 for malformed input and 0 after help. Non-zero statuses come
// with an *ExitError wrapping the cause.
func (a *App) Run(ctx context.Context) (int, error) {
	if a.state == Dispatched || a.state == Exited {
		return 1, fmt.Errorf("%s: already run", a.name)
	}
	p, err := a.Parse()
	if err != nil {
		a.state = Exited
		fmt.Fprintf(a.errOut, "Error: %v\nRun '%s --help' for usage.\n", err, a.name)
		return 1, &ExitError{Code: 1, Err: err}
	}
	if p.Help() {
		a.state = Exited
		return 0, nil
	}
	if m := p.Mismatch(); m != nil {
		a.state = Exited
		return FallbackCode, &ExitError{Code: FallbackCode, Err: m}
	}

	a.state = Dispatched
	code, err := invoke.New(a.logger).Call(ctx, p.resolved)
	a.state = Exited
	if code != 0 || err != nil {
		return code, &ExitError{Code: code, Err: err}
	}
	return 0, nil
}

// Main runs the app and exits the process with its status.
func (a *App) Main(ctx context.Context) {
	code, _ := a.Run(ctx)
	os.Exit(code)
}
