// Package cli builds the cobra command tree from translated argument specs
// and reports what a single invocation resolved to. It never calls an
// operation.
package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/scbrown/newman/internal/argspec"
	"github.com/scbrown/newman/internal/suggest"
	"github.com/scbrown/newman/internal/tree"
	"github.com/spf13/cobra"
)

// Root describes the top of the command tree.
type Root struct {
	Name        string
	Description string
	TopLevel    []argspec.Spec
	Out         io.Writer // help and usage; defaults to stdout
	Err         io.Writer // diagnostics; defaults to stderr
}

// Result is what one invocation resolved to.
type Result struct {
	Op       *tree.Operation
	Values   map[string]any // top-level values, then operation values on top
	Mismatch *DispatchMismatch
	Help     bool // help or version output was requested
}

// DispatchMismatch reports an invocation that named no operation.
type DispatchMismatch struct {
	Namespace   string // "" when the namespace itself did not resolve
	Token       string // the unmatched token, "" when it was missing
	Suggestions []string
}

func (e *DispatchMismatch) Error() string {
	what, where := "namespace", "the program"
	if e.Namespace != "" {
		what, where = "operation", fmt.Sprintf("namespace %q", e.Namespace)
	}
	if e.Token == "" {
		return fmt.Sprintf("missing %s for %s", what, where)
	}
	return fmt.Sprintf("unknown %s %q for %s", what, e.Token, where)
}

// Command is a built command tree ready to execute once.
type Command struct {
	root     *cobra.Command
	topLevel []*specValue
	result   Result
}

type leaf struct {
	op     *tree.Operation
	specs  argspec.Specs
	values []*specValue
}

// Build creates the cobra tree for t. Top-level specs become root-local
// flags; with TraverseChildren they are only recognized before the
// namespace token.
func Build(r Root, t *tree.Tree) (*Command, error) {
	c := &Command{}
	root := &cobra.Command{
		Use:              r.Name,
		Short:            firstLine(r.Description),
		Long:             r.Description,
		Version:          versionString(),
		Args:             cobra.ArbitraryArgs,
		TraverseChildren: true,
		SilenceErrors:    true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mismatch(cmd, "", args)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	if r.Out != nil {
		root.SetOut(r.Out)
	}
	if r.Err != nil {
		root.SetErr(r.Err)
	}
	help := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		c.result.Help = true
		help(cmd, args)
	})

	seen := make(map[string]bool)
	for _, spec := range r.TopLevel {
		if seen[spec.Flag] {
			return nil, fmt.Errorf("top-level flag --%s declared twice", spec.Flag)
		}
		seen[spec.Flag] = true
		v := newSpecValue(spec)
		root.Flags().Var(v, spec.Flag, flagUsage(v))
		c.topLevel = append(c.topLevel, v)
	}

	for _, ns := range t.Namespaces() {
		nsCmd := &cobra.Command{
			Use:   ns.Name,
			Short: firstLine(ns.Doc),
			Long:  ns.Doc,
			Args:  cobra.ArbitraryArgs,
		}
		name := ns.Name
		nsCmd.RunE = func(cmd *cobra.Command, args []string) error {
			return c.mismatch(cmd, name, args)
		}
		for _, op := range ns.Operations() {
			opCmd, err := c.buildLeaf(op)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", ns.Name, op.Name, err)
			}
			nsCmd.AddCommand(opCmd)
		}
		root.AddCommand(nsCmd)
	}

	c.root = root
	return c, nil
}

func (c *Command) buildLeaf(op *tree.Operation) (*cobra.Command, error) {
	l := &leaf{op: op, specs: argspec.Translate(op.Sig)}

	long := op.Doc
	if docs := argumentsDoc(l.specs); docs != "" {
		long = strings.TrimSpace(long + "\n\nArguments:\n" + docs)
	}
	cmd := &cobra.Command{
		Use:   usageLine(op.Name, l.specs),
		Short: firstLine(op.Doc),
		Long:  long,
		Args:  positionalArgs(l.specs),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.resolve(l, args)
			return nil
		},
	}

	if err := l.specs.Validate(); err != nil {
		return nil, err
	}
	for _, spec := range l.specs.Optionals {
		v := newSpecValue(spec)
		cmd.Flags().Var(v, spec.Flag, flagUsage(v))
		l.values = append(l.values, v)
	}
	return cmd, nil
}

// resolve records the parsed values of a leaf invocation.
func (c *Command) resolve(l *leaf, args []string) {
	values := c.topLevelValues()
	for _, v := range l.values {
		values[v.spec.Param] = v.get()
	}
	for i, spec := range l.specs.Positionals {
		values[spec.Param] = args[i]
	}
	if l.specs.Variadic != nil {
		values[l.specs.Variadic.Param] = slices.Clone(args[len(l.specs.Positionals):])
	}
	c.result.Op = l.op
	c.result.Values = values
}

func (c *Command) topLevelValues() map[string]any {
	values := make(map[string]any, len(c.topLevel))
	for _, v := range c.topLevel {
		values[v.spec.Param] = v.get()
	}
	return values
}

// mismatch handles a group command reached without a resolvable operation.
func (c *Command) mismatch(cmd *cobra.Command, namespace string, args []string) error {
	m := &DispatchMismatch{Namespace: namespace}
	if len(args) > 0 {
		m.Token = args[0]
		var known []string
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				known = append(known, sub.Name())
			}
		}
		for _, s := range suggest.Suggest(m.Token, known) {
			m.Suggestions = append(m.Suggestions, s.Name)
		}
	}
	c.result.Mismatch = m

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "Error: %s\n", m)
	if len(m.Suggestions) > 0 {
		fmt.Fprintf(w, "\nDid you mean this?\n\t%s\n", strings.Join(m.Suggestions, "\n\t"))
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, cmd.UsageString())
	return nil
}

// Execute parses args once and returns what they resolved to. Malformed
// input returns the parser's error.
func (c *Command) Execute(args []string) (Result, error) {
	if args == nil {
		args = []string{}
	}
	c.root.SetArgs(protectNegatives(args))
	_, err := c.root.ExecuteC()
	if f := c.root.Flags().Lookup("version"); f != nil && f.Changed {
		c.result.Help = true
	}
	if c.result.Values == nil {
		c.result.Values = c.topLevelValues()
	}
	if err != nil {
		return c.result, err
	}
	return c.result, nil
}

// Usage writes the root usage text.
func (c *Command) Usage() error { return c.root.Usage() }

// Cobra exposes the underlying root command.
func (c *Command) Cobra() *cobra.Command { return c.root }

// ErrMissingArgs and ErrTooManyArgs classify positional count errors.
var (
	ErrMissingArgs = errors.New("missing required arguments")
	ErrTooManyArgs = errors.New("too many arguments")
)

// positionalArgs validates the positional count: exactly the required
// positionals, or at least that many with a variadic capture.
func positionalArgs(specs argspec.Specs) cobra.PositionalArgs {
	n := len(specs.Positionals)
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			var missing []string
			for _, spec := range specs.Positionals[len(args):] {
				missing = append(missing, spec.Param)
			}
			return fmt.Errorf("%w for %q: %s", ErrMissingArgs, cmd.Name(), strings.Join(missing, ", "))
		}
		if specs.Variadic == nil && len(args) > n {
			return fmt.Errorf("%w for %q: accepts %d, received %d", ErrTooManyArgs, cmd.Name(), n, len(args))
		}
		return nil
	}
}

func usageLine(name string, specs argspec.Specs) string {
	parts := []string{name}
	for _, spec := range specs.Positionals {
		parts = append(parts, spec.Usage())
	}
	if specs.Variadic != nil {
		parts = append(parts, specs.Variadic.Usage())
	}
	return strings.Join(parts, " ")
}

func argumentsDoc(specs argspec.Specs) string {
	var lines []string
	for _, spec := range specs.Positionals {
		lines = append(lines, fmt.Sprintf("  %-20s (required) %s", spec.Param, spec.Help))
	}
	if v := specs.Variadic; v != nil {
		lines = append(lines, fmt.Sprintf("  %-20s (variadic) %s", v.Param, v.Help))
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
