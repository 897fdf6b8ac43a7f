// Package table writes column-aligned terminal output.
package table

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const defaultWidth = 80

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultWidth
}

var boldStyle = lipgloss.NewStyle().Bold(true)

// Bold renders s in bold when color is set.
func Bold(s string, color bool) string {
	if !color {
		return s
	}
	return boldStyle.Render(s)
}

// Truncate shortens s to n bytes, ending in "..." when cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n < 4 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// Ago renders t relative to now ("3 minutes ago"), or "-" for the zero time.
func Ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// Table aligns rows into columns. Headers are bold on a terminal.
type Table struct {
	tw    *tabwriter.Writer
	color bool
	width int
}

// New creates a Table writing to w, with an optional header row.
func New(w io.Writer, headers ...string) *Table {
	t := &Table{
		tw:    tabwriter.NewWriter(w, 0, 4, 2, ' ', 0),
		color: IsTTY(w),
		width: width(w),
	}
	if len(headers) > 0 {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = Bold(h, t.color)
		}
		fmt.Fprintln(t.tw, strings.Join(row, "\t"))
	}
	return t
}

// Row writes one row.
func (t *Table) Row(vals ...string) {
	fmt.Fprintln(t.tw, strings.Join(vals, "\t"))
}

// Flush writes the buffered rows.
func (t *Table) Flush() error { return t.tw.Flush() }

// Width is the terminal width, or 80 when not writing to a terminal.
func (t *Table) Width() int { return t.width }
