// Package calc does arithmetic on numbers given on the command line.
package calc

//go:generate go run github.com/scbrown/newman/cmd/newman-gen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Stdout receives results.
var Stdout io.Writer = os.Stdout

// ErrDivideByZero is returned by Divide for a zero divisor.
var ErrDivideByZero = errors.New("division by zero")

// Sum adds values to start and prints the total.
func Sum(start float64, values ...float64) {
	total := start
	for _, v := range values {
		total += v
	}
	fmt.Fprintln(Stdout, format(total, -1))
}

// Divide prints a divided by b.
//
// The quotient is rounded to precision decimal places.
//
//newman:default precision=2
func Divide(a, b float64, precision int) error {
	if b == 0 {
		return ErrDivideByZero
	}
	if precision < 0 {
		return fmt.Errorf("precision must not be negative, got %d", precision)
	}
	fmt.Fprintln(Stdout, format(a/b, precision))
	return nil
}

// Max prints the largest of values.
func Max(values ...float64) error {
	if len(values) == 0 {
		return errors.New("max needs at least one value")
	}
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}
	fmt.Fprintln(Stdout, format(m, -1))
	return nil
}

func format(f float64, precision int) string {
	return strconv.FormatFloat(f, 'f', precision, 64)
}
