// Package greet says hello.
package greet

//go:generate go run github.com/scbrown/newman/cmd/newman-gen

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdout receives greetings.
var Stdout io.Writer = os.Stdout

// Hello greets name.
//
//newman:default greeting="Hello"
//newman:default shout=false
//newman:default times=1
func Hello(name, greeting string, shout bool, times int) error {
	if times < 0 {
		return fmt.Errorf("times must not be negative, got %d", times)
	}
	line := greeting + ", " + name + "!"
	if shout {
		line = strings.ToUpper(line)
	}
	for range times {
		fmt.Fprintln(Stdout, line)
	}
	return nil
}

// Wave waves at everyone in names.
func Wave(names ...string) {
	if len(names) == 0 {
		fmt.Fprintln(Stdout, "*waves*")
		return
	}
	fmt.Fprintf(Stdout, "*waves at %s*\n", strings.Join(names, ", "))
}

// Echo prints text, followed by suffix when one is given.
//
//newman:default suffix=nil
func Echo(text string, suffix *string) {
	if suffix != nil {
		text += *suffix
	}
	fmt.Fprintln(Stdout, text)
}
